// Package importer implements JSON movie import: file validation with
// user-facing error messages, duplicate probing, and a confirm-gated
// session state machine over the store's bulk import.
package importer

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strings"

	"github.com/libresine/libresine-server/internal/domain"
	"github.com/libresine/libresine-server/internal/store"
)

// User-facing validation messages. These are contract: the web client
// matches on them verbatim, so wording changes break the UI.
const (
	msgInvalidFile      = "Please select a valid JSON file."
	msgInvalidJSON      = "Invalid JSON file format."
	msgInvalidStructure = `Invalid JSON structure. Expected an array of movies or an object with a "movies" array.`
	msgNoMovies         = "No movies found in the file."

	msgNameRequired    = "Name is required"
	msgURLRequired     = "Movie URL is required"
	msgURLInvalid      = "Please enter a valid URL"
	msgImageURLInvalid = "Please enter a valid image URL"
	msgRatingInvalid   = "Rating must be a number between 1 and 10"
	msgGenresNotArray  = "Genres must be an array"
	msgActorsNotArray  = "Actors must be an array"
)

// defaultRating fills in records that carry no rating.
const defaultRating = 5

// FileValidation is the outcome of validating an import file. When Valid,
// Movies holds the normalized candidates ready for the store.
type FileValidation struct {
	Valid  bool                  `json:"valid"`
	Errors []string              `json:"errors,omitempty"`
	Movies []*domain.CreateMovie `json:"-"`
}

// ValidateFile checks an uploaded import file and normalizes its records.
// All errors are accumulated, not just the first, so a user can fix the
// whole file in one pass.
func ValidateFile(filename, mimeType string, data []byte) *FileValidation {
	if !acceptableImportFile(filename, mimeType) {
		return invalid(msgInvalidFile)
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return invalid(msgInvalidJSON)
	}

	records, ok := extractRecords(parsed)
	if !ok {
		return invalid(msgInvalidStructure)
	}
	if len(records) == 0 {
		return invalid(msgNoMovies)
	}

	result := &FileValidation{}
	for i, record := range records {
		movie, errs := validateRecord(record)
		for _, msg := range errs {
			// Record numbering is 1-based, matching the file a user
			// is looking at.
			result.Errors = append(result.Errors, fmt.Sprintf("Movie %d: %s", i+1, msg))
		}
		result.Movies = append(result.Movies, movie)
	}

	result.Valid = len(result.Errors) == 0
	if !result.Valid {
		result.Movies = nil
	}
	return result
}

// acceptableImportFile takes a .json filename or any json media type, so
// an export re-uploaded as application/json under an odd name still
// passes the gate.
func acceptableImportFile(filename, mimeType string) bool {
	if strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".json") {
		return true
	}
	return strings.Contains(strings.ToLower(mimeType), "json")
}

func invalid(msg string) *FileValidation {
	return &FileValidation{Valid: false, Errors: []string{msg}}
}

// extractRecords accepts either a top-level array or an object wrapping a
// "movies" array.
func extractRecords(parsed any) ([]any, bool) {
	switch v := parsed.(type) {
	case []any:
		return v, true
	case map[string]any:
		if movies, ok := v["movies"].([]any); ok {
			return movies, true
		}
	}
	return nil, false
}

// validateRecord checks a single record and returns the normalized movie
// alongside any error messages. Normalization always runs so a later fix
// of an unrelated record never changes this one's shape.
func validateRecord(record any) (*domain.CreateMovie, []string) {
	var errs []string
	movie := &domain.CreateMovie{
		Rating: defaultRating,
		Genres: []string{},
		Actors: []string{},
	}

	fields, ok := record.(map[string]any)
	if !ok {
		return movie, []string{msgNameRequired, msgURLRequired}
	}

	if name, ok := stringField(fields, "name"); ok && strings.TrimSpace(name) != "" {
		movie.Name = strings.TrimSpace(name)
	} else {
		errs = append(errs, msgNameRequired)
	}

	if rawURL, ok := stringField(fields, "movie_url"); !ok || strings.TrimSpace(rawURL) == "" {
		errs = append(errs, msgURLRequired)
	} else if !isValidURL(rawURL) {
		errs = append(errs, msgURLInvalid)
	} else {
		movie.MovieURL = strings.TrimSpace(rawURL)
	}

	if raw, present := fields["image_url"]; present {
		if imageURL, ok := raw.(string); ok && strings.TrimSpace(imageURL) == "" {
			// Blank means no image.
		} else if !ok || !isValidURL(imageURL) {
			errs = append(errs, msgImageURLInvalid)
		} else {
			movie.ImageURL = strings.TrimSpace(imageURL)
		}
	}

	if raw, present := fields["rating"]; present {
		if rating, ok := raw.(float64); ok && rating >= 1 && rating <= 10 {
			movie.Rating = rating
		} else {
			errs = append(errs, msgRatingInvalid)
		}
	}

	if desc, ok := stringField(fields, "description"); ok {
		movie.Description = strings.TrimSpace(desc)
	}
	if director, ok := stringField(fields, "director"); ok {
		movie.Director = strings.TrimSpace(director)
	}

	if raw, present := fields["genres"]; present {
		if genres, ok := stringSlice(raw); ok {
			movie.Genres = genres
		} else {
			errs = append(errs, msgGenresNotArray)
		}
	}
	if raw, present := fields["actors"]; present {
		if actors, ok := stringSlice(raw); ok {
			movie.Actors = actors
		} else {
			errs = append(errs, msgActorsNotArray)
		}
	}

	return movie, errs
}

func stringField(fields map[string]any, key string) (string, bool) {
	value, ok := fields[key].(string)
	return value, ok
}

// stringSlice converts a JSON array to its string elements. Non-array
// input fails; non-string elements inside an array are dropped.
func stringSlice(raw any) ([]string, bool) {
	items, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := []string{}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// isValidURL requires an absolute http or https URL.
func isValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Duplicate identifies the first import candidate already present in the
// store.
type Duplicate struct {
	Index int    `json:"index"` // 1-based position in the file
	Name  string `json:"name"`
}

// findFirstDuplicate probes the store for the first candidate that already
// exists. Only the first hit is reported; the confirm dialog names one
// movie and the store skips the rest on commit anyway.
func findFirstDuplicate(ctx context.Context, s *store.Store, movies []*domain.CreateMovie) (*Duplicate, error) {
	for i, movie := range movies {
		exists, err := s.MovieExists(ctx, movie.Name, movie.MovieURL, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return &Duplicate{Index: i + 1, Name: movie.Name}, nil
		}
	}
	return nil, nil
}
