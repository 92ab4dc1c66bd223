package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
)

var pageTemplates = []string{
	"login",
	"register",
	"privacy",
	"not_found",
	"dashboard",
	"day",
	"habits",
	"settings",
	"sports",
	"exercises",
	"routines",
	"session",
	"stats",
}

func parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pageTemplates))
	for _, page := range pageTemplates {
		parsed, err := template.New("base").Funcs(newTemplateFuncMap()).ParseFS(templateFiles,
			"templates/base.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = parsed
	}
	return templates, nil
}

func newTemplateFuncMap() template.FuncMap {
	return template.FuncMap{
		"t":             translateMessage,
		"formatDate":    formatTemplateDate,
		"formatFloat":   formatTemplateFloat,
		"duration":      formatTemplateDuration,
		"isActiveRoute": isActiveTemplateRoute,
		"toJSON":        templateToJSON,
		"derefInt":      derefTemplateInt,
		"hasID":         templateHasID,
	}
}

func (handler *Handler) render(c *fiber.Ctx, name string, data fiber.Map) error {
	tmpl, ok := handler.templates[name]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).SendString("template not found")
	}
	payload := handler.withTemplateDefaults(c, data)
	var output bytes.Buffer
	if err := tmpl.ExecuteTemplate(&output, "base", payload); err != nil {
		handler.logger.Error("render template", "template", name, "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render template")
	}
	c.Type("html", "utf-8")
	return c.Send(output.Bytes())
}

func (handler *Handler) withTemplateDefaults(c *fiber.Ctx, data fiber.Map) fiber.Map {
	payload := fiber.Map{}
	for key, value := range data {
		payload[key] = value
	}
	messages := currentMessages(c)
	if _, ok := payload["Messages"]; !ok {
		payload["Messages"] = messages
	}
	if _, ok := payload["Lang"]; !ok {
		payload["Lang"] = currentLanguage(c)
	}
	if _, ok := payload["CSRFToken"]; !ok {
		payload["CSRFToken"] = csrfToken(c)
	}
	if _, ok := payload["CurrentPath"]; !ok {
		payload["CurrentPath"] = c.OriginalURL()
	}
	if _, ok := payload["CurrentUser"]; !ok {
		if user, ok := currentUser(c); ok {
			payload["CurrentUser"] = user
		}
	}
	if _, ok := payload["Title"]; !ok {
		payload["Title"] = "Daybook"
	}
	if _, ok := payload["Theme"]; !ok {
		payload["Theme"] = "light"
	}
	return payload
}

func localizedPageTitle(messages map[string]string, key string, fallback string) string {
	title := translateMessage(messages, key)
	if title == key || strings.TrimSpace(title) == "" {
		return fallback
	}
	return title
}

func formatTemplateDate(value time.Time, layout string) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(layout)
}

func formatTemplateFloat(value float64) string {
	return humanize.FtoaWithDigits(value, 1)
}

func formatTemplateDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

func isActiveTemplateRoute(currentPath string, route string) bool {
	path := strings.TrimSpace(currentPath)
	if path == "" {
		return route == "/"
	}
	if route == "/" {
		return path == "/" || strings.HasPrefix(path, "/?")
	}
	return path == route || strings.HasPrefix(path, route+"?") || strings.HasPrefix(path, route+"/")
}

func templateToJSON(value any) template.JS {
	serialized, err := json.Marshal(value)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(serialized)
}

func derefTemplateInt(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

func templateHasID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
