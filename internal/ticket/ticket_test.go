package ticket_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/backoffice/internal/ticket"
)

var _ = DescribeTable("CanTransition",
	func(from, to string, allowed bool) {
		Expect(ticket.CanTransition(from, to)).To(Equal(allowed))
	},
	Entry("open to in_progress", ticket.StatusOpen, ticket.StatusInProgress, true),
	Entry("in_progress to resolved", ticket.StatusInProgress, ticket.StatusResolved, true),
	Entry("resolved to closed", ticket.StatusResolved, ticket.StatusClosed, true),
	Entry("open straight to closed", ticket.StatusOpen, ticket.StatusClosed, true),
	Entry("in_progress straight to closed", ticket.StatusInProgress, ticket.StatusClosed, true),
	Entry("same status", ticket.StatusResolved, ticket.StatusResolved, true),
	Entry("skipping a step", ticket.StatusOpen, ticket.StatusResolved, false),
	Entry("moving backwards", ticket.StatusResolved, ticket.StatusOpen, false),
	Entry("reopening a closed ticket", ticket.StatusClosed, ticket.StatusOpen, false),
	Entry("leaving closed", ticket.StatusClosed, ticket.StatusInProgress, false),
)
