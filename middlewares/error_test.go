package middlewares

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"baustelle-backend/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/validation", func(c *fiber.Ctx) error {
		return &workflow.ValidationError{Message: "no approvers configured"}
	})
	app.Get("/notfound", func(c *fiber.Ctx) error {
		return &workflow.NotFoundError{ID: "abc"}
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "conflict")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return assert.AnError
	})
	app.Post("/bind", func(c *fiber.Ctx) error {
		var in struct {
			Email string `json:"email" validate:"required,email"`
		}
		if err := BindAndValidate(c, &in); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	app := newTestApp()

	cases := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/validation", fiber.StatusUnprocessableEntity, "no approvers configured"},
		{"/notfound", fiber.StatusNotFound, "abc"},
		{"/fiber", fiber.StatusConflict, "conflict"},
		{"/boom", fiber.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.wantStatus, resp.StatusCode, tc.path)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), tc.wantBody, tc.path)
	}
}

func TestErrorHandlerValidatorErrors(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/bind", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "validation failed")
	assert.Contains(t, string(body), "Email")
}

func TestErrorHandlerBadBody(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/bind", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
