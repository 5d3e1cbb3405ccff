package internal_test

import (
	"strings"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	validConfig := func() *internal.Config {
		cfg := &internal.Config{
			Database: internal.DatabaseConfig{Source: "postgres://localhost/backoffice"},
			Security: internal.SecurityConfig{SessionSecret: strings.Repeat("s", 32)},
		}
		cfg.ApplyDefaults()
		return cfg
	}

	It("accepts a config with defaults applied", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("treats a missing database url as fatal", func() {
		cfg := validConfig()
		cfg.Database.Source = ""

		err := cfg.Validate()

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("database url is required"))
	})

	It("rejects short session secrets", func() {
		cfg := validConfig()
		cfg.Security.SessionSecret = "short"

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("session secret")))
	})

	It("rejects unknown session stores", func() {
		cfg := validConfig()
		cfg.Security.SessionStore = "redis"

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("session_store")))
	})

	It("aggregates errors from several sections", func() {
		cfg := validConfig()
		cfg.Database.Source = ""
		cfg.Security.SessionSecret = ""

		err := cfg.Validate()

		Expect(err.Error()).To(ContainSubstring("database config"))
		Expect(err.Error()).To(ContainSubstring("security config"))
	})

	It("requires a redirect url once google login is configured", func() {
		cfg := validConfig()
		cfg.OAuth.GoogleClientID = "id"
		cfg.OAuth.GoogleClientSecret = "secret"

		Expect(cfg.OAuth.Enabled()).To(BeTrue())
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("google_redirect_url")))
	})

	It("only validates payment limits when stripe is configured", func() {
		cfg := validConfig()
		cfg.Payment.MaxCredits = 1
		Expect(cfg.Validate()).To(Succeed())

		cfg.Payment.StripeSecretKey = "sk_test_123"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("credit package limits")))
	})

	It("reads everything from the environment", func() {
		GinkgoT().Setenv("DATABASE_URL", "postgres://db/app")
		GinkgoT().Setenv("SESSION_SECRET", strings.Repeat("x", 40))
		GinkgoT().Setenv("SESSION_TTL", "2h")
		GinkgoT().Setenv("PORT", "9000")
		GinkgoT().Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

		cfg := internal.LoadConfigFromEnv()

		Expect(cfg.Database.Source).To(Equal("postgres://db/app"))
		Expect(cfg.Security.SessionTTL).To(Equal(2 * time.Hour))
		Expect(cfg.Server.Port).To(Equal(9000))
		Expect(cfg.Server.Origins()).To(Equal([]string{"http://a.test", "http://b.test"}))
		Expect(cfg.Validate()).To(Succeed())
	})
})
