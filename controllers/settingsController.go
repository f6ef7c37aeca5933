package controllers

import (
	"baustelle-backend/middlewares"
	"baustelle-backend/workflow"

	"github.com/gofiber/fiber/v2"
)

func GetApproverSettings(c *fiber.Ctx) error {
	emails, err := Approvals.Registry.Get(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"approver_emails": emails})
}

func UpdateApproverSettings(c *fiber.Ctx) error {
	var in workflow.SetConfigInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	emails, err := Approvals.Registry.Set(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"approver_emails": emails})
}
