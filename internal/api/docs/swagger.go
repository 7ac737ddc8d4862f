package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"quantity: must be greater than zero"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// UserResponse represents an account in responses
type UserResponse struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name      string `json:"name" example:"Maria Silva"`
	Email     string `json:"email" example:"maria@example.com"`
	Role      string `json:"role" example:"user"`
	Status    string `json:"status" example:"approved"`
	CreatedAt string `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt string `json:"updated_at" example:"2024-01-01T00:00:00Z"`
}

// RegisterResponse wraps the created account
type RegisterResponse struct {
	User UserResponse `json:"user"`
}

// LoginResponse wraps a session token and the account behind it
type LoginResponse struct {
	Token string       `json:"token" example:"eyJhbGciOiJIUzI1NiJ9..."`
	User  UserResponse `json:"user"`
}

// UsersResponse wraps the account directory
type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

// OrderResponse represents a purchase order in responses
type OrderResponse struct {
	ID            string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name          string `json:"name" example:"Monitor 27 polegadas"`
	Quantity      int    `json:"quantity" example:"2"`
	Reason        string `json:"reason" example:"monitor atual com defeito"`
	Department    string `json:"department" example:"TI"`
	Status        string `json:"status" example:"pendente"`
	ItemLink      string `json:"item_link,omitempty" example:"https://loja.example.com/monitor"`
	CreatedBy     string `json:"created_by" example:"550e8400-e29b-41d4-a716-446655440000"`
	CreatedByName string `json:"created_by_name" example:"Maria Silva"`
	CreatedAt     string `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt     string `json:"updated_at" example:"2024-01-01T00:00:00Z"`
}

// OrderEnvelope wraps a single order
type OrderEnvelope struct {
	Order OrderResponse `json:"order"`
}

// OrdersResponse wraps an order listing
type OrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

// WebhookResponse represents a webhook subscription in responses
type WebhookResponse struct {
	ID         string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name       string   `json:"name" example:"canal-compras"`
	URL        string   `json:"url" example:"https://hooks.example.com/compras"`
	Events     []string `json:"events" example:"pedido_criado,status_atualizado"`
	Enabled    bool     `json:"enabled" example:"true"`
	MaxRetries int      `json:"max_retries" example:"3"`
	CreatedAt  string   `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt  string   `json:"updated_at" example:"2024-01-01T00:00:00Z"`
}

// WebhookEnvelope wraps a single webhook, plus its secret on creation
type WebhookEnvelope struct {
	Webhook WebhookResponse `json:"webhook"`
	Secret  string          `json:"secret,omitempty" example:"6d6f636b2d736563726574"`
}

// WebhooksResponse wraps the webhook listing
type WebhooksResponse struct {
	Webhooks []WebhookResponse `json:"webhooks"`
}

// WebhookLogResponse represents one delivery attempt
type WebhookLogResponse struct {
	ID         string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	WebhookID  string `json:"webhook_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	WebhookURL string `json:"webhook_url" example:"https://hooks.example.com/compras"`
	Event      string `json:"event" example:"pedido_criado"`
	Success    bool   `json:"success" example:"true"`
	StatusCode int    `json:"status_code,omitempty" example:"200"`
	Message    string `json:"message" example:"delivered successfully"`
	RetryCount int    `json:"retry_count" example:"0"`
	RetryOf    string `json:"retry_of,omitempty"`
	Timestamp  string `json:"timestamp" example:"2024-01-01T00:00:00Z"`
}

// WebhookLogsResponse wraps the delivery history
type WebhookLogsResponse struct {
	Logs []WebhookLogResponse `json:"logs"`
}

// WebhookTestResponse wraps the log of a test delivery
type WebhookTestResponse struct {
	Log WebhookLogResponse `json:"log"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Compras API",
		Version:     "v1.0.0",
		Description: "Purchase order management with approval workflow and outbound webhooks",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	authErrors := []response.Response{
		response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing credentials"}, "401", "Unauthorized"),
		response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
	}

	adminErrors := []response.Response{
		response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing credentials"}, "401", "Unauthorized"),
		response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Access denied"}, "403", "Forbidden"),
		response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
	}

	endpoints := []*endpoint.EndPoint{
		// POST /v1/auth/register
		endpoint.New(
			endpoint.POST,
			"/auth/register",
			endpoint.WithTags("Auth"),
			endpoint.WithSummary("Register a new account"),
			endpoint.WithDescription("Creates a self-service account. The first account becomes an approved admin; later accounts wait for administrator approval."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisterResponse{}, "201", "Account created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "EMAIL_ALREADY_REGISTERED", Message: "Email is already registered"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "email: must not be empty"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many requests, slow down"}, "429", "Too Many Requests"),
			}),
		),

		// POST /v1/auth/login
		endpoint.New(
			endpoint.POST,
			"/auth/login",
			endpoint.WithTags("Auth"),
			endpoint.WithSummary("Authenticate and obtain a session token"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LoginResponse{}, "200", "Authenticated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "PENDING_APPROVAL", Message: "Account is pending administrator approval"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many requests, slow down"}, "429", "Too Many Requests"),
			}),
		),

		// GET /v1/orders
		endpoint.New(
			endpoint.GET,
			"/orders",
			endpoint.WithTags("Orders"),
			endpoint.WithSummary("List purchase orders"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("status", parameter.Query, parameter.WithDescription("Filter by status: pendente, aguardando or resolvido")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(OrdersResponse{}, "200", "Orders retrieved"),
			}),
			endpoint.WithErrors(authErrors),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// POST /v1/orders
		endpoint.New(
			endpoint.POST,
			"/orders",
			endpoint.WithTags("Orders"),
			endpoint.WithSummary("Create a purchase order"),
			endpoint.WithDescription("New orders always start as pendente and are owned by the authenticated user."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(OrderEnvelope{}, "201", "Order created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing credentials"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "quantity: must be greater than zero"}, "422", "Unprocessable Entity"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// PUT /v1/orders/:id
		endpoint.New(
			endpoint.PUT,
			"/orders/{id}",
			endpoint.WithTags("Orders"),
			endpoint.WithSummary("Update a purchase order"),
			endpoint.WithDescription("Only the owner or an admin may update. Once an order leaves pendente, non-admins may only change its status."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Order UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(OrderEnvelope{}, "200", "Order updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Access denied"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "ORDER_NOT_FOUND", Message: "Order not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "status: must be pendente, aguardando or resolvido"}, "422", "Unprocessable Entity"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// DELETE /v1/orders/:id
		endpoint.New(
			endpoint.DELETE,
			"/orders/{id}",
			endpoint.WithTags("Orders"),
			endpoint.WithSummary("Delete a purchase order"),
			endpoint.WithDescription("Owners may only delete while the order is pendente; admins may delete regardless of status."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Order UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Order deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "can only delete pending orders"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "ORDER_NOT_FOUND", Message: "Order not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/admin/users
		endpoint.New(
			endpoint.GET,
			"/admin/users",
			endpoint.WithTags("Admin - Users"),
			endpoint.WithSummary("List all accounts"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UsersResponse{}, "200", "Accounts retrieved"),
			}),
			endpoint.WithErrors(adminErrors),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// POST /v1/admin/users/:id/approve
		endpoint.New(
			endpoint.POST,
			"/admin/users/{id}/approve",
			endpoint.WithTags("Admin - Users"),
			endpoint.WithSummary("Approve a pending account"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("User UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisterResponse{}, "200", "Account approved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Access denied"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "USER_NOT_FOUND", Message: "User not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// DELETE /v1/admin/users/:id
		endpoint.New(
			endpoint.DELETE,
			"/admin/users/{id}",
			endpoint.WithTags("Admin - Users"),
			endpoint.WithSummary("Remove an account"),
			endpoint.WithDescription("Admins cannot remove their own account, and the last remaining admin cannot be removed."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("User UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Account removed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SELF_REMOVAL", Message: "Users cannot remove their own account"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "USER_NOT_FOUND", Message: "User not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "LAST_ADMIN", Message: "At least one administrator account must remain"}, "409", "Conflict"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/admin/webhooks
		endpoint.New(
			endpoint.GET,
			"/admin/webhooks",
			endpoint.WithTags("Admin - Webhooks"),
			endpoint.WithSummary("List webhook subscriptions"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhooksResponse{}, "200", "Webhooks retrieved"),
			}),
			endpoint.WithErrors(adminErrors),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// POST /v1/admin/webhooks
		endpoint.New(
			endpoint.POST,
			"/admin/webhooks",
			endpoint.WithTags("Admin - Webhooks"),
			endpoint.WithSummary("Create a webhook subscription"),
			endpoint.WithDescription("When no secret is supplied one is generated and returned once in the response."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhookEnvelope{}, "201", "Webhook created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Access denied"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "events: must subscribe to at least one event"}, "422", "Unprocessable Entity"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// POST /v1/admin/webhooks/:id/test
		endpoint.New(
			endpoint.POST,
			"/admin/webhooks/{id}/test",
			endpoint.WithTags("Admin - Webhooks"),
			endpoint.WithSummary("Send a test delivery"),
			endpoint.WithDescription("Fires a synthetic pedido_criado payload at the endpoint and returns the resulting log entry. Test deliveries never retry."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Webhook UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhookTestResponse{}, "200", "Test delivery attempted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Access denied"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "WEBHOOK_NOT_FOUND", Message: "Webhook configuration not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/admin/webhooks/logs
		endpoint.New(
			endpoint.GET,
			"/admin/webhooks/logs",
			endpoint.WithTags("Admin - Webhooks"),
			endpoint.WithSummary("Read the delivery log"),
			endpoint.WithDescription("Returns up to the 100 most recent delivery attempts, newest first."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("webhook_id", parameter.Query, parameter.WithDescription("Filter by webhook UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhookLogsResponse{}, "200", "Logs retrieved"),
			}),
			endpoint.WithErrors(adminErrors),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
