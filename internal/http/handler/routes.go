package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schemawatch/internal/repository"
	"schemawatch/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay free of business logic; they validate input, call the
// service, and translate errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.InspectionService, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/tables", ListTables(svc))
	app.Get("/tables/:name", DescribeTable(svc))

	app.Post("/checks", RunCheck(svc))
	app.Get("/checks", ListChecks(svc))
	app.Get("/checks/:id", GetCheck(svc))
	app.Delete("/checks/:id", DeleteCheck(svc))
	app.Get("/checks/:id/url", CheckReportURL(svc))
	app.Get("/checks/:id/report", CheckReport(svc))

	app.Get("/docs", DocsRedirect())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// DocsRedirect sends API doc visitors to the Swagger UI.
func DocsRedirect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Redirect("/swagger/index.html", fiber.StatusFound)
	}
}

// HealthCheck checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListTables returns the live table listing for the configured schema.
func ListTables(svc service.InspectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tables, err := svc.ListTables(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"data": tables, "total": len(tables)})
	}
}

// DescribeTable returns existence and columns for a single table.
func DescribeTable(svc service.InspectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		detail, err := svc.DescribeTable(c.UserContext(), name)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTableNameRequired), errors.Is(err, repository.ErrInvalidIdentifier):
				return writeError(c, fiber.StatusBadRequest, "INVALID_TABLE_NAME", "invalid table name")
			case errors.Is(err, service.ErrTableNotFound):
				return writeError(c, fiber.StatusNotFound, "TABLE_NOT_FOUND", "table not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(detail)
	}
}

// RunCheck executes a check pass now and returns the stored run.
func RunCheck(svc service.InspectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		run, err := svc.Run(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(run)
	}
}

// ListChecks returns check run history with limit & offset.
func ListChecks(svc service.InspectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.ListRuns(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetCheck returns one stored check run by ID.
func GetCheck(svc service.InspectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		run, err := svc.GetRun(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrRunNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "check run not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(run)
	}
}

// CheckReportURL returns a presigned download URL for a run's archived report.
func CheckReportURL(svc service.InspectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.ReportURL(c.UserContext(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrRunNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "check run not found")
			case errors.Is(err, service.ErrNoArchive):
				return writeError(c, fiber.StatusNotFound, "REPORT_NOT_ARCHIVED", "check run has no archived report")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

// CheckReport streams the archived JSON report for a run.
func CheckReport(svc service.InspectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, err := svc.Report(c.UserContext(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrRunNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "check run not found")
			case errors.Is(err, service.ErrNoArchive):
				return writeError(c, fiber.StatusNotFound, "REPORT_NOT_ARCHIVED", "check run has no archived report")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		// fasthttp closes the stream after the response is written.
		return c.SendStream(rc)
	}
}

// DeleteCheck removes a stored check run and its archived report.
func DeleteCheck(svc service.InspectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.DeleteRun(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrRunNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "check run not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
