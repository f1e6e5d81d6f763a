package server

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mikeboe/research-assistant/pkg/database"
	"github.com/mikeboe/research-assistant/pkg/render"
	"github.com/mikeboe/research-assistant/pkg/research"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "research_session"

type Handler struct {
	Service *Service
	MCP     http.Handler
}

func NewHandler(s *Service, mcpHandler http.Handler) *Handler {
	return &Handler{Service: s, MCP: mcpHandler}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	page := r.Group("/", h.withSession)
	{
		page.GET("/", h.index)
		page.POST("/chat", h.chat)
		page.POST("/clear", h.clear)
	}

	api := r.Group("/api", h.withSession)
	{
		api.GET("/history", h.getHistory)
		api.DELETE("/history", h.deleteHistory)
		api.POST("/research", h.research)
		api.GET("/logs", h.getLogs)
	}

	if h.MCP != nil {
		r.Any("/mcp", gin.WrapH(h.MCP))
	}
}

// withSession makes sure the caller has a session cookie and stores its id
// in the context.
func (h *Handler) withSession(c *gin.Context) {
	id, err := c.Cookie(sessionCookie)
	if err != nil || uuid.Validate(id) != nil {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	}
	c.Set(sessionCookie, id)
	c.Next()
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionCookie)
}

// statusFor maps request errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, research.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, research.ErrAgentInvocation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type turnView struct {
	Role      string
	Text      string
	Result    *research.ResearchResult
	Message   string
	Raw       string
	RawIsJSON bool
}

type pageData struct {
	Turns []turnView
	Error string
	Query string
}

func (h *Handler) renderPage(c *gin.Context, status int, errMsg, query string) {
	turns := h.Service.History(sessionID(c))
	views := make([]turnView, 0, len(turns))
	for _, t := range turns {
		v := turnView{Role: string(t.Role), Text: t.Text, Result: t.Result}
		if t.Failure != nil {
			v.Message = t.Failure.Message
			v.Raw, v.RawIsJSON = render.RawView(t.Failure.Raw)
		}
		views = append(views, v)
	}
	c.HTML(status, "index.html", pageData{Turns: views, Error: errMsg, Query: query})
}

func (h *Handler) index(c *gin.Context) {
	h.renderPage(c, http.StatusOK, "", "")
}

func (h *Handler) chat(c *gin.Context) {
	query := c.PostForm("query")
	if _, err := h.Service.Ask(c.Request.Context(), sessionID(c), query); err != nil {
		h.renderPage(c, statusFor(err), err.Error(), query)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) clear(c *gin.Context) {
	if err := h.Service.Clear(sessionID(c)); err != nil {
		h.renderPage(c, statusFor(err), err.Error(), "")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) getHistory(c *gin.Context) {
	turns := h.Service.History(sessionID(c))
	c.JSON(http.StatusOK, gin.H{"session": sessionID(c), "turns": turns})
}

func (h *Handler) deleteHistory(c *gin.Context) {
	if err := h.Service.Clear(sessionID(c)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type researchRequest struct {
	Query string `json:"query" binding:"required"`
}

func (h *Handler) research(c *gin.Context) {
	var req researchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.Service.Ask(c.Request.Context(), sessionID(c), req.Query)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	turn := research.AssistantTurn(outcome)
	c.JSON(http.StatusOK, gin.H{"result": turn.Result, "parse_error": turn.Failure})
}

func (h *Handler) getLogs(c *gin.Context) {
	if h.Service.Logs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "log storage is not configured"})
		return
	}
	logs, err := h.Service.Logs.SessionLogs(c.Request.Context(), sessionID(c), 200)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []database.LogEntry{}
	}
	c.JSON(http.StatusOK, logs)
}
