package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Status
		ok       bool
	}{
		{name: "canonical to-read", input: "TO-READ", expected: StatusToRead, ok: true},
		{name: "canonical reading", input: "READING", expected: StatusReading, ok: true},
		{name: "canonical finished", input: "FINISHED", expected: StatusFinished, ok: true},
		{name: "japanese to-read", input: "積読", expected: StatusToRead, ok: true},
		{name: "japanese reading", input: "読書中", expected: StatusReading, ok: true},
		{name: "japanese finished", input: "読了", expected: StatusFinished, ok: true},
		{name: "unknown value", input: "DROPPED", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "lowercase not accepted", input: "reading", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, ok := ParseStatus(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, status)
				assert.True(t, status.Valid())
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "積読", StatusToRead.Label())
	assert.Equal(t, "読書中", StatusReading.Label())
	assert.Equal(t, "読了", StatusFinished.Label())
}

func TestNewBookGeneratesDefaults(t *testing.T) {
	before := time.Now().UTC().Truncate(time.Second)
	book := NewBook("9784065208087", "ノルウェイの森", "村上春樹", "講談社", "1987-09-04", "", nil)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, StatusToRead, book.Status)
	assert.Nil(t, book.CoverURL)
	assert.False(t, book.CreatedAt.Before(before))
	assert.True(t, book.CreatedAt.Equal(book.UpdatedAt))
	// Timestamps are stored at second precision.
	assert.Zero(t, book.CreatedAt.Nanosecond())

	other := NewBook("9784065208087", "ノルウェイの森", "村上春樹", "講談社", "1987-09-04", "", nil)
	assert.NotEqual(t, book.ID, other.ID, "each book gets its own identifier")
}

func TestTouchRefreshesUpdatedAt(t *testing.T) {
	book := NewBook("isbn", "title", "", "", "", "", nil)
	book.UpdatedAt = book.UpdatedAt.Add(-time.Hour)
	before := book.UpdatedAt
	book.Touch()
	assert.True(t, book.UpdatedAt.After(before))
}

func TestBookRoundTrip(t *testing.T) {
	cover := "https://cover.openbd.jp/9784065208087.jpg"
	original := []Book{
		NewBook("9784065208087", "ノルウェイの森", "村上春樹", "講談社", "1987-09-04", "長編小説", &cover),
		NewBook("9784101001547", "雪国", "川端康成", "新潮社", "1947-01-01", "", nil),
	}

	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := DecodeBooks(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	for i := range original {
		assert.Equal(t, original[i].ID, decoded[i].ID)
		assert.Equal(t, original[i].ISBN, decoded[i].ISBN)
		assert.Equal(t, original[i].Title, decoded[i].Title)
		assert.Equal(t, original[i].Author, decoded[i].Author)
		assert.Equal(t, original[i].Publisher, decoded[i].Publisher)
		assert.Equal(t, original[i].PublicationDate, decoded[i].PublicationDate)
		assert.Equal(t, original[i].Description, decoded[i].Description)
		assert.Equal(t, original[i].Status, decoded[i].Status)
		assert.True(t, original[i].CreatedAt.Equal(decoded[i].CreatedAt))
		assert.True(t, original[i].UpdatedAt.Equal(decoded[i].UpdatedAt))
		if original[i].CoverURL == nil {
			assert.Nil(t, decoded[i].CoverURL)
		} else {
			require.NotNil(t, decoded[i].CoverURL)
			assert.Equal(t, *original[i].CoverURL, *decoded[i].CoverURL)
		}
	}
}

func TestEncodeKeepsUTF8AndNullCover(t *testing.T) {
	book := NewBook("9784065208087", "ノルウェイの森", "村上春樹", "講談社", "1987-09-04", "", nil)
	data, err := Encode([]Book{book})
	require.NoError(t, err)

	assert.Contains(t, string(data), "ノルウェイの森", "titles are not escaped")
	assert.Contains(t, string(data), `"coverUrl": null`, "absent cover serializes as null, not omitted")
}

func TestDecodeBooksValidation(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		field string
	}{
		{
			name:  "missing status",
			input: `[{"id":"1","isbn":"x","title":"t","author":"","publisher":"","publicationDate":"","description":"","coverUrl":null,"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`,
			field: "status",
		},
		{
			name:  "unknown status",
			input: `[{"id":"1","isbn":"x","title":"t","status":"WISHLIST","coverUrl":null,"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`,
			field: "status",
		},
		{
			name:  "missing id",
			input: `[{"isbn":"x","title":"t","status":"TO-READ","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`,
			field: "id",
		},
		{
			name:  "missing title",
			input: `[{"id":"1","isbn":"x","status":"TO-READ","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`,
			field: "title",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeBooks([]byte(tc.input))
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tc.field, validation.Field)
		})
	}
}

func TestDecodeBooksV1Lenient(t *testing.T) {
	input := `[{"id":"1","isbn":"9784065208087","title":"ノルウェイの森","author":"村上春樹","publisher":"講談社","publicationDate":"1987-09-04","description":"","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`

	books, err := DecodeBooksV1([]byte(input))
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Empty(t, books[0].Status, "absent status stays empty, migration fills the default")
	assert.Nil(t, books[0].CoverURL)

	// Strict decoding must reject the same record.
	_, err = DecodeBooks([]byte(input))
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestImpressionRoundTrip(t *testing.T) {
	imp := NewImpression("book-1", "impressions/title_abc.md")
	data, err := Encode([]Impression{imp})
	require.NoError(t, err)

	decoded, err := DecodeImpressions(data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, imp.ID, decoded[0].ID)
	assert.Equal(t, imp.BookID, decoded[0].BookID)
	assert.Equal(t, imp.FilePath, decoded[0].FilePath)
	assert.True(t, imp.CreatedAt.Equal(decoded[0].CreatedAt))
	assert.True(t, imp.UpdatedAt.Equal(decoded[0].UpdatedAt))
}

func TestDecodeImpressionsV1(t *testing.T) {
	input := `[{"id":"i1","bookId":"b1","content":"とても面白かった","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-02T00:00:00Z"}]`
	impressions, err := DecodeImpressionsV1([]byte(input))
	require.NoError(t, err)
	require.Len(t, impressions, 1)
	assert.Equal(t, "とても面白かった", impressions[0].Content)

	_, err = DecodeImpressionsV1([]byte(`[{"id":"i1","bookId":"b1"}]`))
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "content", validation.Field)
}

func TestStatusHistoryRoundTrip(t *testing.T) {
	entry := NewStatusHistory("b1", StatusToRead, StatusReading)
	data, err := Encode([]StatusHistory{entry})
	require.NoError(t, err)

	decoded, err := DecodeStatusHistory(data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, entry.ID, decoded[0].ID)
	assert.Equal(t, StatusToRead, decoded[0].OldStatus)
	assert.Equal(t, StatusReading, decoded[0].NewStatus)
	assert.True(t, entry.ChangedAt.Equal(decoded[0].ChangedAt))
}
