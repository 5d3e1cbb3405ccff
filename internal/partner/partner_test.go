package partner_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	partnerDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/partner"
	"github.com/frahmantamala/backoffice/internal/partner"
)

func row(id int64, parent *int64, depth int, at time.Time) partnerDatamodel.CommentRow {
	return partnerDatamodel.CommentRow{
		PartnerComment: partnerDatamodel.PartnerComment{
			ID:        id,
			PartnerID: 1,
			UserID:    1,
			ParentID:  parent,
			Content:   "c",
			CreatedAt: at,
		},
		Depth: depth,
	}
}

func ptr(v int64) *int64 { return &v }

var _ = Describe("BuildTree", func() {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	It("nests replies under their parents newest first", func() {
		rows := []partnerDatamodel.CommentRow{
			row(1, nil, 0, base),
			row(2, nil, 0, base.Add(time.Minute)),
			row(3, ptr(1), 1, base.Add(2*time.Minute)),
			row(4, ptr(1), 1, base.Add(3*time.Minute)),
			row(5, ptr(3), 2, base.Add(4*time.Minute)),
		}

		tree := partner.BuildTree(rows)

		Expect(tree).To(HaveLen(2))
		Expect(tree[0].ID).To(Equal(int64(2)))
		Expect(tree[1].ID).To(Equal(int64(1)))
		Expect(tree[0].Replies).To(BeEmpty())
		Expect(tree[0].Replies).NotTo(BeNil())

		replies := tree[1].Replies
		Expect(replies).To(HaveLen(2))
		Expect(replies[0].ID).To(Equal(int64(4)))
		Expect(replies[1].ID).To(Equal(int64(3)))
		Expect(replies[1].Replies).To(HaveLen(1))
		Expect(replies[1].Replies[0].ID).To(Equal(int64(5)))
		Expect(replies[1].Replies[0].Depth).To(Equal(2))
	})

	It("breaks timestamp ties by id", func() {
		tree := partner.BuildTree([]partnerDatamodel.CommentRow{
			row(7, nil, 0, base),
			row(9, nil, 0, base),
			row(8, nil, 0, base),
		})
		Expect(tree).To(HaveLen(3))
		Expect([]int64{tree[0].ID, tree[1].ID, tree[2].ID}).To(Equal([]int64{9, 8, 7}))
	})

	It("drops replies whose parent is missing along with their descendants", func() {
		tree := partner.BuildTree([]partnerDatamodel.CommentRow{
			row(1, nil, 0, base),
			row(2, ptr(99), 1, base),
			row(3, ptr(2), 2, base),
		})
		Expect(tree).To(HaveLen(1))
		Expect(tree[0].ID).To(Equal(int64(1)))
		Expect(tree[0].Replies).To(BeEmpty())
	})

	It("accepts rows in any order", func() {
		tree := partner.BuildTree([]partnerDatamodel.CommentRow{
			row(3, ptr(2), 2, base),
			row(2, ptr(1), 1, base),
			row(1, nil, 0, base),
		})
		Expect(tree).To(HaveLen(1))
		Expect(tree[0].Replies[0].Replies[0].ID).To(Equal(int64(3)))
	})

	It("returns an empty slice for no rows", func() {
		tree := partner.BuildTree(nil)
		Expect(tree).NotTo(BeNil())
		Expect(tree).To(BeEmpty())
	})
})
