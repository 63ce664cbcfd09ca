package api

import (
	"errors"
	"sort"
	"strconv"

	"github.com/example/channel-board-demo/modules/channel"
	"github.com/example/channel-board-demo/modules/session"
	"github.com/example/channel-board-demo/modules/slots"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const defaultActivityLimit = 50

// newApp builds the Fiber application with every route.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	app.Get("/health", m.healthHandler)

	app.Use(ClientMiddleware(m.tokens))

	// Screens
	app.Get("/auth", m.authPage)
	app.Post("/auth/login", m.login)
	app.Post("/auth/signup", m.signup)
	app.Post("/auth/logout", m.logout)

	requireScreenSession := SessionMiddleware(m.sessions, redirectToAuth)
	app.Get("/", requireScreenSession, m.home)
	app.Get("/search", requireScreenSession, m.searchPage)

	// REST
	v1 := app.Group("/api/v1", SessionMiddleware(m.sessions, unauthorized))

	channels := v1.Group("/channels")
	channels.Get("/", m.listChannels)
	channels.Post("/", m.createChannel)
	channels.Delete("/:id", m.deleteChannel)
	channels.Post("/:id/select", m.selectChannel)
	channels.Get("/:id/messages", m.getMessages)
	channels.Post("/:id/messages", m.sendMessage)

	v1.Post("/messages", m.sendToActive)
	v1.Get("/activity", m.listActivity)

	return app
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	names := make([]string, 0, len(m.checks))
	for name := range m.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "healthy"
	details := map[string]any{"api": "operational"}
	for _, name := range names {
		h := m.checks[name].Health(c.UserContext())
		details[name] = h.Message
		if !h.Healthy {
			status = "degraded"
		}
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(HealthResponse{Status: status, Details: details})
}

// authPage handles GET /auth.
func (m *APIModule) authPage(c *fiber.Ctx) error {
	_, err := m.sessions.CurrentUser(c.UserContext(), clientID(c))
	if err == nil {
		return c.Redirect("/", fiber.StatusFound)
	}
	if !errors.Is(err, session.ErrNoSession) {
		return err
	}

	page := AuthPageResponse{Mode: session.ModeLogin, Alternate: session.ModeSignup}
	if c.Query("mode") == session.ModeSignup {
		page = AuthPageResponse{Mode: session.ModeSignup, Alternate: session.ModeLogin}
	}
	return c.JSON(page)
}

// login handles POST /auth/login.
func (m *APIModule) login(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := m.sessions.Login(c.UserContext(), clientID(c), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(AuthResponse{User: user, Redirect: "/"})
}

// signup handles POST /auth/signup.
func (m *APIModule) signup(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := m.sessions.Signup(c.UserContext(), clientID(c), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(AuthResponse{User: user, Redirect: "/"})
}

// logout handles POST /auth/logout.
func (m *APIModule) logout(c *fiber.Ctx) error {
	if err := m.sessions.Logout(c.UserContext(), clientID(c)); err != nil {
		return err
	}
	return c.Redirect("/auth", fiber.StatusSeeOther)
}

// home handles GET /.
func (m *APIModule) home(c *fiber.Ctx) error {
	ws, err := m.channels.Workspace(c.UserContext(), clientID(c))
	if err != nil {
		return err
	}
	return c.JSON(ws)
}

// searchPage handles GET /search?q=.
func (m *APIModule) searchPage(c *fiber.Ctx) error {
	query := c.Query("q")
	resp, err := m.search.Search(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(SearchPageResponse{Query: query, Channels: resp.Channels, Total: len(resp.Channels)})
}

// listChannels handles GET /api/v1/channels.
func (m *APIModule) listChannels(c *fiber.Ctx) error {
	resp, err := m.channels.ListChannels(c.UserContext(), clientID(c))
	if err != nil {
		return err
	}
	return c.JSON(ChannelListResponse{Channels: resp.Channels, ActiveID: resp.ActiveID, Total: len(resp.Channels)})
}

// createChannel handles POST /api/v1/channels.
func (m *APIModule) createChannel(c *fiber.Ctx) error {
	var req CreateChannelRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	ch, err := m.channels.CreateChannel(c.UserContext(), clientID(c), req.Name)
	if err != nil {
		return err
	}
	if ch == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusCreated).JSON(ch)
}

// deleteChannel handles DELETE /api/v1/channels/:id.
func (m *APIModule) deleteChannel(c *fiber.Ctx) error {
	id, err := channelIDParam(c)
	if err != nil {
		return err
	}
	if err := m.channels.DeleteChannel(c.UserContext(), clientID(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// selectChannel handles POST /api/v1/channels/:id/select.
func (m *APIModule) selectChannel(c *fiber.Ctx) error {
	id, err := channelIDParam(c)
	if err != nil {
		return err
	}
	ch, err := m.channels.SelectChannel(c.UserContext(), clientID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(ch)
}

// getMessages handles GET /api/v1/channels/:id/messages.
func (m *APIModule) getMessages(c *fiber.Ctx) error {
	id, err := channelIDParam(c)
	if err != nil {
		return err
	}
	msgs, err := m.channels.GetMessages(c.UserContext(), clientID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(MessageListResponse{ChannelID: id, Messages: msgs, Total: len(msgs)})
}

// sendMessage handles POST /api/v1/channels/:id/messages.
func (m *APIModule) sendMessage(c *fiber.Ctx) error {
	id, err := channelIDParam(c)
	if err != nil {
		return err
	}
	return m.postMessage(c, id)
}

// sendToActive handles POST /api/v1/messages.
func (m *APIModule) sendToActive(c *fiber.Ctx) error {
	return m.postMessage(c, 0)
}

func (m *APIModule) postMessage(c *fiber.Ctx, channelID int64) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	msg, err := m.channels.SendMessage(c.UserContext(), clientID(c), channelID, req.Content)
	if err != nil {
		return err
	}
	if msg == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// listActivity handles GET /api/v1/activity.
func (m *APIModule) listActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultActivityLimit)
	entries, err := m.activity.Recent(c.UserContext(), clientID(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(ActivityResponse{Entries: entries, Total: len(entries)})
}

func channelIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid channel ID")
	}
	return id, nil
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request body",
	})
}

// errorHandler maps domain errors returned by handlers to HTTP responses.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	status, code, message := classify(err)
	if status >= fiber.StatusInternalServerError {
		m.logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(ErrorResponse{Error: code, Message: message})
}

func classify(err error) (int, string, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, "request_error", fe.Message
	case errors.Is(err, session.ErrUsernameEmpty):
		return fiber.StatusBadRequest, "validation_error", err.Error()
	case errors.Is(err, channel.ErrNoActiveChannel):
		return fiber.StatusConflict, "no_active_channel", err.Error()
	case errors.Is(err, session.ErrNoSession):
		return fiber.StatusUnauthorized, "unauthorized", err.Error()
	case errors.Is(err, channel.ErrNotOwner):
		return fiber.StatusForbidden, "forbidden", err.Error()
	case errors.Is(err, channel.ErrChannelNotFound):
		return fiber.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, slots.ErrCorruptSlot):
		return fiber.StatusInternalServerError, "corrupt_state", "Stored client state could not be read"
	}
	return fiber.StatusInternalServerError, "server_error", "Internal Server Error"
}
