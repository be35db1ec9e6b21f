package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"
	"strings"
	"unicode"

	"cookconnect/internal/middleware"
	"cookconnect/internal/models"
	"cookconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "recipeId" -> "recipe ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// respondError writes err with the status its code implies. Server-side
// failures are logged with their cause, which never reaches the client.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// readUpload loads one multipart file into memory.
func readUpload(fh *multipart.FileHeader) (service.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return service.ImageUpload{}, models.NewValidationError("Could not read uploaded file")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.ImageUpload{}, models.NewValidationError("Could not read uploaded file")
	}
	return service.ImageUpload{Data: data, ContentType: fh.Header.Get(fiber.HeaderContentType)}, nil
}

// optionalUpload reads the named file field, returning nil when absent.
func optionalUpload(c *fiber.Ctx, field string) (*service.ImageUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	upload, err := readUpload(fh)
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// formStringList decodes a form field holding a JSON array of strings.
// Repeated plain fields are accepted too.
func formStringList(c *fiber.Ctx, field string) ([]string, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "[") {
		return formValues(c, field), nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, models.NewFieldValidationError(field, field+" must be a JSON array of strings")
	}
	return items, nil
}

// formIDList decodes category ids sent as a JSON array (numbers or numeric
// strings) or as a comma separated list.
func formIDList(c *fiber.Ctx, field string) ([]uint, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "[") {
		return models.ParseIDList(raw), nil
	}
	ids, ok := decodeIDArray([]byte(raw))
	if !ok {
		return nil, models.NewFieldValidationError(field, field+" must be a JSON array of ids")
	}
	return ids, nil
}

// decodeIDArray accepts a JSON array whose elements are positive integers or
// numeric strings.
func decodeIDArray(data []byte) ([]uint, bool) {
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		var n int64
		switch v := item.(type) {
		case float64:
			if v == float64(int64(v)) {
				n = int64(v)
			}
		case string:
			n, _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		}
		if n <= 0 {
			return nil, false
		}
		ids = append(ids, uint(n))
	}
	return ids, true
}

// idList is a JSON id array tolerant of numeric strings.
type idList []uint

func (l *idList) UnmarshalJSON(data []byte) error {
	ids, ok := decodeIDArray(data)
	if !ok {
		return models.NewFieldValidationError("categories", "categories must be an array of ids")
	}
	*l = ids
	return nil
}

func formValues(c *fiber.Ctx, field string) []string {
	form, err := c.MultipartForm()
	if err != nil {
		return []string{c.FormValue(field)}
	}
	return form.Value[field]
}

// formInt parses an optional integer form field.
func formInt(c *fiber.Ctx, field string) (int, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewFieldValidationError(field, field+" must be a whole number")
	}
	return n, nil
}
