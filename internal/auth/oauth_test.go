package auth_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/backoffice/internal/auth"
)

var _ = Describe("StateSigner", func() {
	const secret = "0123456789abcdef0123456789abcdef"

	It("verifies a state against the nonce it was issued with", func() {
		signer := auth.NewStateSigner(secret, time.Minute)

		state, nonce, err := signer.Issue()
		Expect(err).NotTo(HaveOccurred())
		Expect(nonce).To(HaveLen(64))

		Expect(signer.Verify(state, nonce)).To(Succeed())
	})

	It("rejects a mismatched nonce", func() {
		signer := auth.NewStateSigner(secret, time.Minute)
		state, _, err := signer.Issue()
		Expect(err).NotTo(HaveOccurred())

		Expect(signer.Verify(state, "other")).To(MatchError(auth.ErrInvalidState))
		Expect(signer.Verify(state, "")).To(MatchError(auth.ErrInvalidState))
	})

	It("rejects a state signed with another secret", func() {
		state, nonce, err := auth.NewStateSigner("another-secret-another-secret-xx", time.Minute).Issue()
		Expect(err).NotTo(HaveOccurred())

		Expect(auth.NewStateSigner(secret, time.Minute).Verify(state, nonce)).To(MatchError(auth.ErrInvalidState))
	})

	It("rejects an expired state", func() {
		signer := auth.NewStateSigner(secret, time.Nanosecond)
		state, nonce, err := signer.Issue()
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() error { return signer.Verify(state, nonce) }).
			WithTimeout(3 * time.Second).
			Should(MatchError(auth.ErrInvalidState))
	})
})

var _ = Describe("MemoryStore", func() {
	It("does not persist the renewed flag", func(ctx SpecContext) {
		store := auth.NewMemoryStore()
		Expect(store.Save(ctx, &auth.Session{ID: "s1", UserID: 7, ExpiresAt: time.Now().Add(time.Hour), Renewed: true})).To(Succeed())

		got, err := store.Get(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.UserID).To(Equal(int64(7)))
		Expect(got.Renewed).To(BeFalse())
	})

	It("deletes every session of a user", func(ctx SpecContext) {
		store := auth.NewMemoryStore()
		exp := time.Now().Add(time.Hour)
		Expect(store.Save(ctx, &auth.Session{ID: "a", UserID: 1, ExpiresAt: exp})).To(Succeed())
		Expect(store.Save(ctx, &auth.Session{ID: "b", UserID: 1, ExpiresAt: exp})).To(Succeed())
		Expect(store.Save(ctx, &auth.Session{ID: "c", UserID: 2, ExpiresAt: exp})).To(Succeed())

		Expect(store.DeleteByUser(ctx, 1)).To(Succeed())

		a, _ := store.Get(ctx, "a")
		c, _ := store.Get(ctx, "c")
		Expect(a).To(BeNil())
		Expect(c).NotTo(BeNil())
	})
})

var _ = Describe("PermissionSet", func() {
	It("marshals as a sorted array", func() {
		b, err := auth.NewPermissionSet("z.key", "a.key").MarshalJSON()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`["a.key","z.key"]`))
	})
})
