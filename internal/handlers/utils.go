package handlers

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	appLog "github.com/soccer-rsvp/app/internal/log"
	"github.com/soccer-rsvp/app/internal/models"
	"github.com/soccer-rsvp/app/internal/threshold"
)

// Template helper functions
var funcMap = template.FuncMap{
	"FormatDateTime": FormatDateTime,
	"FormatDate":     FormatDate,
	"StatusLabel":    StatusLabel,
}

// FormatDateTime formats a time.Time object into a more readable string.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("January 2, 2006 at 3:04 PM")
}

// FormatDate formats just the date portion.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("Mon January 2, 2006")
}

// StatusLabel renders a threshold status as UI copy.
func StatusLabel(s threshold.Status) string {
	switch s {
	case threshold.BelowMinimum:
		return "Need players"
	case threshold.BelowIdeal:
		return "Short on subs"
	default:
		return "Full roster"
	}
}

// templates holds all parsed templates, keyed by the template path
// relative to the templates directory, e.g. "games/index.html".
var (
	templates     map[string]*template.Template
	templatesOnce sync.Once
)

// LoadTemplates parses all HTML templates from the given directory and
// its subdirectories. Every page is parsed together with layout.html
// and all partials (files whose name starts with "_"). It should be
// called once at application startup.
func LoadTemplates(dir string) error {
	var loadErr error
	templatesOnce.Do(func() {
		templates = make(map[string]*template.Template)
		layoutFile := filepath.Join(dir, "layout.html")

		var partialFiles, pageFiles []string
		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".html" || path == layoutFile {
				return nil
			}
			if strings.HasPrefix(filepath.Base(path), "_") {
				partialFiles = append(partialFiles, path)
			} else {
				pageFiles = append(pageFiles, path)
			}
			return nil
		})
		if walkErr != nil {
			loadErr = fmt.Errorf("walking template dir %s: %w", dir, walkErr)
			return
		}
		if len(pageFiles) == 0 {
			loadErr = fmt.Errorf("no page templates found in %s", dir)
			return
		}

		for _, pageFile := range pageFiles {
			name, relErr := filepath.Rel(dir, pageFile)
			if relErr != nil {
				loadErr = relErr
				return
			}
			name = filepath.ToSlash(name)

			filesToParse := append([]string{layoutFile}, partialFiles...)
			filesToParse = append(filesToParse, pageFile)

			tmpl, parseErr := template.New("layout.html").Funcs(funcMap).ParseFiles(filesToParse...)
			if parseErr != nil {
				loadErr = fmt.Errorf("parsing page template %s: %w", name, parseErr)
				return
			}
			templates[name] = tmpl
		}
	})
	return loadErr
}

// RenderTemplate executes the named page template inside the layout.
func RenderTemplate(w http.ResponseWriter, name string, data interface{}) {
	tmpl, ok := templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template not found: %s", name), http.StatusInternalServerError)
		return
	}

	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		appLog.Error("template execution failed", err, "template", name)
	}
}

// RenderErrorPage renders a standardized error page using error.html.
func RenderErrorPage(w http.ResponseWriter, r *http.Request, db *sql.DB, statusCode int, title string, message string) {
	w.WriteHeader(statusCode)

	// db may be nil if the error occurs before the DB is up; the navbar
	// then simply renders logged-out.
	var currentPlayer *models.Player
	if db != nil && IsAuthenticated(r) {
		var err error
		currentPlayer, err = GetCurrentPlayer(r, db)
		if err != nil {
			appLog.Error("error page could not resolve current player", err)
		}
	}

	data := map[string]interface{}{
		"Title":      fmt.Sprintf("Error %d - %s", statusCode, title),
		"StatusCode": statusCode,
		"StatusText": http.StatusText(statusCode),
		"ErrorTitle": title,
		"Message":    message,
		"Player":     currentPlayer,
	}

	RenderTemplate(w, "error.html", data)
}
