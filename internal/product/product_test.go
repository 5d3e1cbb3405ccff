package product_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/backoffice/internal/product"
)

var _ = Describe("Margin", func() {
	DescribeTable("computes margin over price",
		func(cost, price, wantMargin int64, wantPct float64) {
			margin, pct := product.Margin(cost, price)
			Expect(margin).To(Equal(wantMargin))
			Expect(pct).To(BeNumerically("~", wantPct, 0.001))
		},
		Entry("positive margin", int64(600), int64(1000), int64(400), 40.0),
		Entry("selling at a loss", int64(1500), int64(1000), int64(-500), -50.0),
		Entry("rounds to two decimals", int64(200), int64(300), int64(100), 33.33),
		Entry("free item", int64(100), int64(0), int64(-100), 0.0),
		Entry("no cost", int64(0), int64(250), int64(250), 100.0),
	)
})
