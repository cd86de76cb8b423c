package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFileRejectsNonJSONFilename(t *testing.T) {
	result := ValidateFile("movies.csv", "", []byte(`[]`))
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Please select a valid JSON file."}, result.Errors)
}

func TestValidateFileAcceptsJSONMediaType(t *testing.T) {
	content := []byte(`[{"name": "A", "movie_url": "https://example.com/a"}]`)

	// An odd filename passes when the upload declares a json media type.
	result := ValidateFile("export.data", "application/json", content)
	assert.True(t, result.Valid)

	result = ValidateFile("export.data", "text/plain", content)
	require.False(t, result.Valid)
	assert.Equal(t, []string{"Please select a valid JSON file."}, result.Errors)
}

func TestValidateFileRejectsMalformedJSON(t *testing.T) {
	result := ValidateFile("movies.json", "", []byte(`{not json`))
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Invalid JSON file format."}, result.Errors)
}

func TestValidateFileStructure(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"object without movies array",
			`{"data": []}`,
			`Invalid JSON structure. Expected an array of movies or an object with a "movies" array.`,
		},
		{
			"movies not an array",
			`{"movies": "nope"}`,
			`Invalid JSON structure. Expected an array of movies or an object with a "movies" array.`,
		},
		{
			"scalar top level",
			`42`,
			`Invalid JSON structure. Expected an array of movies or an object with a "movies" array.`,
		},
		{
			"empty array",
			`[]`,
			"No movies found in the file.",
		},
		{
			"empty movies array",
			`{"movies": []}`,
			"No movies found in the file.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidateFile("movies.json", "", []byte(tc.content))
			assert.False(t, result.Valid)
			assert.Equal(t, []string{tc.want}, result.Errors)
		})
	}
}

func TestValidateFileRecordErrors(t *testing.T) {
	content := `[
		{"movie_url": "https://example.com/a"},
		{"name": "B", "movie_url": "not-a-url"},
		{"name": "C", "movie_url": "https://example.com/c", "image_url": "nope"},
		{"name": "D", "movie_url": "https://example.com/d", "rating": 11},
		{"name": "E", "movie_url": "https://example.com/e", "rating": "high"},
		{"name": "F", "movie_url": "https://example.com/f", "genres": "Drama", "actors": {"lead": "G"}}
	]`

	result := ValidateFile("movies.json", "", []byte(content))
	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"Movie 1: Name is required",
		"Movie 2: Please enter a valid URL",
		"Movie 3: Please enter a valid image URL",
		"Movie 4: Rating must be a number between 1 and 10",
		"Movie 5: Rating must be a number between 1 and 10",
		"Movie 6: Genres must be an array",
		"Movie 6: Actors must be an array",
	}, result.Errors)
}

func TestValidateFileMissingURLMessages(t *testing.T) {
	result := ValidateFile("movies.json", "", []byte(`[{"name": "A"}, {"name": "  ", "movie_url": "https://example.com/b"}]`))
	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"Movie 1: Movie URL is required",
		"Movie 2: Name is required",
	}, result.Errors)
}

func TestValidateFileNormalization(t *testing.T) {
	content := `[{
		"name": "  Heat  ",
		"movie_url": "https://example.com/heat"
	}]`

	result := ValidateFile("movies.json", "", []byte(content))
	require.True(t, result.Valid)
	require.Len(t, result.Movies, 1)

	movie := result.Movies[0]
	assert.Equal(t, "Heat", movie.Name)
	assert.Equal(t, float64(5), movie.Rating) // unset ratings default to 5
	assert.NotNil(t, movie.Genres)
	assert.NotNil(t, movie.Actors)
	assert.Empty(t, movie.Genres)
	assert.Empty(t, movie.ImageURL)
}

func TestValidateFileAcceptsWrappedObject(t *testing.T) {
	content := `{"movies": [{
		"name": "Heat",
		"movie_url": "https://example.com/heat",
		"image_url": "https://example.com/heat.jpg",
		"rating": 8.3,
		"genres": ["Crime", "Thriller"],
		"director": "Michael Mann",
		"actors": ["Al Pacino", "Robert De Niro"]
	}]}`

	result := ValidateFile("Movies.JSON", "", []byte(content))
	require.True(t, result.Valid)
	require.Len(t, result.Movies, 1)

	movie := result.Movies[0]
	assert.Equal(t, 8.3, movie.Rating)
	assert.Equal(t, []string{"Crime", "Thriller"}, movie.Genres)
	assert.Equal(t, "Michael Mann", movie.Director)
}

func TestValidateFileBlankImageURLIsAllowed(t *testing.T) {
	result := ValidateFile("movies.json", "", []byte(`[{"name": "A", "movie_url": "https://example.com/a", "image_url": ""}]`))
	assert.True(t, result.Valid)
}

func TestValidateFileNonObjectRecord(t *testing.T) {
	result := ValidateFile("movies.json", "", []byte(`["just a string"]`))
	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"Movie 1: Name is required",
		"Movie 1: Movie URL is required",
	}, result.Errors)
}
