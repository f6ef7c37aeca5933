package controllers

import (
	"baustelle-backend/middlewares"
	"baustelle-backend/utils"
	"baustelle-backend/workflow"

	"github.com/gofiber/fiber/v2"
)

// Approvals is wired in main before routes are registered.
var Approvals *workflow.Service

// Init installs the workflow service used by the approval handlers.
func Init(svc *workflow.Service) {
	Approvals = svc
}

func SubmitApproval(c *fiber.Ctx) error {
	var in workflow.SubmitInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)    // trim plain string fields
	utils.NormalizePtrDTO(&in) // round the optional amounts

	res, err := Approvals.Submit(c.Context(), in)
	if err != nil {
		return err
	}
	if res.AlreadyPending {
		return c.JSON(res)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

type decisionInput struct {
	ApproverEmail string `json:"approver_email" validate:"required"`
	Comment       string `json:"comment"`
}

func ApproveRequest(c *fiber.Ctx) error {
	var in decisionInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	res, err := Approvals.Approve(c.Context(), c.Params("id"), in.ApproverEmail)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func RejectRequest(c *fiber.Ctx) error {
	var in decisionInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	res, err := Approvals.Reject(c.Context(), c.Params("id"), in.ApproverEmail, in.Comment)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func GetApproval(c *fiber.Ctx) error {
	req, err := Approvals.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if req == nil {
		return fiber.NewError(fiber.StatusNotFound, "approval request not found")
	}
	return c.JSON(req)
}

func ListPendingApprovals(c *fiber.Ctx) error {
	approver := c.Query("approver")
	limit := utils.ParseIntDefault(c.Query("limit"), workflow.DefaultPendingLimit)

	pending, err := Approvals.ListPendingForApprover(c.Context(), approver, limit)
	if err != nil {
		return err
	}
	return c.JSON(pending)
}
