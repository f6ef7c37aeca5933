package routes

import (
	"github.com/gofiber/fiber/v2"

	"baustelle-backend/controllers"
	"baustelle-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Idempotency guard on mutating endpoints
	api.Use(middlewares.Idempotency())

	// Approval workflow
	api.Post("/approval", controllers.SubmitApproval)
	api.Get("/approval/:id", controllers.GetApproval)
	api.Post("/approval/:id/approve", controllers.ApproveRequest)
	api.Post("/approval/:id/reject", controllers.RejectRequest)
	api.Get("/approvals/pending", controllers.ListPendingApprovals)

	// Approver configuration
	api.Get("/settings/approvers", controllers.GetApproverSettings)
	api.Put("/settings/approvers", controllers.UpdateApproverSettings)
}
