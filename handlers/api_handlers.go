package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"roster-server-go/auth"
	"roster-server-go/db"
	"roster-server-go/export"
	"roster-server-go/models"
	"roster-server-go/query"
)

// APIHandler holds the dependencies for API handlers
type APIHandler struct {
	Store  *db.Store
	Auth   auth.Authenticator
	Tokens *auth.TokenIssuer
	Now    func() time.Time
	Export func(w io.Writer, f export.Format, students []models.Student) error
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(store *db.Store, authenticator auth.Authenticator, tokens *auth.TokenIssuer) *APIHandler {
	return &APIHandler{
		Store:  store,
		Auth:   authenticator,
		Tokens: tokens,
		Now:    time.Now,
		Export: export.Write,
	}
}

// Every mutating action answers with "refresh": true when the roster changed,
// so the UI knows to re-read it; rejections carry "refresh": false.
func done(c *gin.Context, status int, body gin.H) {
	body["refresh"] = true
	c.JSON(status, body)
}

// rejected maps roster error kinds onto HTTP statuses.
func rejected(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, db.ErrDuplicateClass), errors.Is(err, db.ErrClassInUse):
		status = http.StatusConflict
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": db.Message(err), "refresh": false})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "refresh": false})
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/login
func (h *APIHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.Auth.Authenticate(req.Username, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, exp, err := h.Tokens.Issue(req.Username)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	resp := gin.H{"token": token}
	if !exp.IsZero() {
		resp["expiresAt"] = exp
	}
	c.JSON(http.StatusOK, resp)
}

// --- Class Handlers ---

// GetAllClasses handles GET /api/classes
func (h *APIHandler) GetAllClasses(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Classes())
}

type addClassRequest struct {
	Name string `json:"name"`
}

// AddClass handles POST /api/classes
func (h *APIHandler) AddClass(c *gin.Context) {
	var req addClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	name, err := h.Store.AddClass(req.Name)
	if err != nil {
		rejected(c, err)
		return
	}
	done(c, http.StatusCreated, gin.H{"message": "Class '" + name + "' added successfully!", "class": name})
}

// DeleteClass handles DELETE /api/classes/:name
func (h *APIHandler) DeleteClass(c *gin.Context) {
	name := c.Param("name")
	if err := h.Store.RemoveClass(name); err != nil {
		rejected(c, err)
		return
	}
	done(c, http.StatusOK, gin.H{"message": "Class '" + name + "' deleted"})
}

// --- Student Handlers ---

// currentView returns the students matching the field/term query parameters.
func (h *APIHandler) currentView(c *gin.Context) ([]models.Student, bool) {
	field, err := query.ParseField(c.Query("field"))
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	return query.Filter(h.Store.Students(), field, c.Query("term")), true
}

// GetStudents handles GET /api/students?field=Name|Class&term=...
func (h *APIHandler) GetStudents(c *gin.Context) {
	students, ok := h.currentView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, students)
}

// GetStudent handles GET /api/students/:id
func (h *APIHandler) GetStudent(c *gin.Context) {
	st, err := h.Store.FindStudent(c.Param("id"))
	if err != nil {
		rejected(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// AddStudent handles POST /api/students
func (h *APIHandler) AddStudent(c *gin.Context) {
	var fields models.StudentFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	st, err := h.Store.AddStudent(fields)
	if err != nil {
		rejected(c, err)
		return
	}
	done(c, http.StatusCreated, gin.H{"message": "Student added successfully!", "student": st})
}

// UpdateStudent handles PUT /api/students/:id
func (h *APIHandler) UpdateStudent(c *gin.Context) {
	var fields models.StudentFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	st, err := h.Store.UpdateStudent(c.Param("id"), fields)
	if err != nil {
		rejected(c, err)
		return
	}
	done(c, http.StatusOK, gin.H{"message": "Student updated", "student": st})
}

// DeleteStudent handles DELETE /api/students/:id. Deleting an unknown ID succeeds.
func (h *APIHandler) DeleteStudent(c *gin.Context) {
	removed, err := h.Store.RemoveStudent(c.Param("id"))
	if err != nil {
		rejected(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted", "removed": removed, "refresh": removed})
}

// ExportStudents handles GET /api/students/export?format=csv|xlsx&field=&term=
func (h *APIHandler) ExportStudents(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	students, ok := h.currentView(c)
	if !ok {
		return
	}

	// encode fully before answering so a failure can't follow a 200
	var buf bytes.Buffer
	if err := h.Export(&buf, format, students); err != nil {
		slog.Error("export failed", "format", format, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write export file"})
		return
	}

	fileName := export.FileName(format, h.Now())
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// --- Import Handler ---

// ImportStudents handles POST /api/import/students
func (h *APIHandler) ImportStudents(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "Error retrieving uploaded file: "+err.Error())
		return
	}
	defer file.Close()

	slog.Info("received roster upload", "file", header.Filename, "size", header.Size)

	rows, err := export.ReadRoster(file)
	if err != nil {
		badRequest(c, "Failed to read roster: "+err.Error())
		return
	}
	added, skipped, err := h.Store.ImportStudents(rows)
	if err != nil {
		rejected(c, err)
		return
	}
	if skipped == nil {
		skipped = []models.RowError{}
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Import finished",
		"importedCount": len(added),
		"skipped":       skipped,
		"refresh":       len(added) > 0,
	})
}

// --- Ping Handler ---
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
