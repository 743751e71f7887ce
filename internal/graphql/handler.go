package graphql

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classroom-go-api/internal/utils"
)

// Handler serves GraphQL requests over a single POST endpoint.
type Handler struct {
	schema graphql.Schema
	logger zerolog.Logger
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// NewHandler compiles the schema and constructs the handler.
func NewHandler(resolver *Resolver, logger zerolog.Logger) (*Handler, error) {
	schema, err := NewSchema(resolver)
	if err != nil {
		return nil, err
	}

	return &Handler{
		schema: schema,
		logger: logger.With().Str("component", "graphql_handler").Logger(),
	}, nil
}

// Register attaches the GraphQL endpoint to the router.
func (h *Handler) Register(router fiber.Router) {
	router.Post("/graphql", h.serve)
}

func (h *Handler) serve(c *fiber.Ctx) error {
	var payload request
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Query == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "query is required")
	}

	ctx := c.UserContext()
	if userID, ok := c.Locals("user_id").(uint); ok {
		role, _ := c.Locals("user_role").(string)
		ctx = WithIdentity(ctx, Identity{UserID: userID, Role: role})
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  payload.Query,
		OperationName:  payload.OperationName,
		VariableValues: payload.Variables,
		Context:        ctx,
	})

	if result.HasErrors() {
		h.logger.Debug().Int("errors", len(result.Errors)).Msg("graphql request completed with errors")
	}

	// Per GraphQL convention resolver failures surface in the errors array
	// with a 200 status, not as transport errors.
	return c.Status(fiber.StatusOK).JSON(result)
}
