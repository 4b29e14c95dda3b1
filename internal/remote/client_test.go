package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/vfied-bot/internal/models"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, DefaultPaths(), srv.Client(), zap.NewNop())
}

func TestLoadCatalog_LoadsEveryDocument(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/local_items.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"Borough Market","emoji":"🧺","description":"Street food"}]`))
	})
	mux.HandleFunc("/data/travel_items.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"name":"Sagrada Familia","city":"Barcelona"},
			{"name":"La Boqueria","city":"Barcelona"},
			{"name":"Tsukiji","city":"Tokyo"},
			{"name":"Nowhere"}
		]`))
	})
	mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"e1","title":"Night market","location":"Shoreditch","starts_at":"2026-10-20T18:00:00Z"}]`))
	})
	client := newTestClient(t, mux)

	cat := client.LoadCatalog(context.Background())

	require.Len(t, cat.LocalItems, 1)
	assert.Equal(t, "Borough Market", cat.LocalItems[0].Name)
	assert.Len(t, cat.Travel("barcelona"), 2)
	assert.Len(t, cat.Travel("Tokyo"), 1)
	assert.ElementsMatch(t, []string{"Barcelona", "Tokyo"}, cat.Cities())
	require.Len(t, cat.Events, 1)
	assert.Equal(t, "Night market", cat.Events[0].Title)
}

func TestLoadCatalog_DegradesToEmptyCollections(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/local_items.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})
	mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	client := newTestClient(t, mux)

	cat := client.LoadCatalog(context.Background())

	assert.NotNil(t, cat.LocalItems)
	assert.Empty(t, cat.LocalItems)
	assert.Empty(t, cat.TravelItems)
	assert.NotNil(t, cat.Events)
	assert.Empty(t, cat.Events)
	assert.Nil(t, cat.Travel("Paris"))
}

func TestSearchVenues_PassesQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/venues/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "thai food", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"id":"v1","name":"Thai Garden","address":"1 High St"}]`))
	})
	client := newTestClient(t, mux)

	venues, err := client.SearchVenues(context.Background(), "thai food")
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "Thai Garden", venues[0].Name)
}

func TestLogin_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ana@example.com", creds.Email)
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":"u1","email":"ana@example.com","name":"Ana","token":"t"}}`))
	})
	client := newTestClient(t, mux)

	user, err := client.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: "u1", Email: "ana@example.com", Name: "Ana", Token: "t"}, user)
}

func TestLogin_RejectedCarriesServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Wrong password"}`))
	})
	client := newTestClient(t, mux)

	_, err := client.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Wrong password")
}

func TestRegister_ValidatesBeforeCalling(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	client := newTestClient(t, mux)

	_, err := client.Register(context.Background(), Registration{Email: "not-an-email", Password: "123", Name: ""})
	require.Error(t, err)
	assert.False(t, called)
}

func TestSubmitEvent_MultipartWithImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/events/submit", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Night market", r.FormValue("title"))
		assert.Equal(t, "Shoreditch", r.FormValue("location"))
		assert.Equal(t, "2026-10-20T18:00:00Z", r.FormValue("starts_at"))

		file, header, err := r.FormFile("image")
		if assert.NoError(t, err) {
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "poster.jpg", header.Filename)
			assert.Equal(t, "jpegbytes", string(data))
		}
		_, _ = w.Write([]byte(`{"success":true,"status":"published","event":{"id":"e9","title":"Night market"}}`))
	})
	client := newTestClient(t, mux)

	sub := models.EventSubmission{
		Title:    "Night market",
		Location: "Shoreditch",
		StartsAt: time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC),
	}
	res, err := client.SubmitEvent(context.Background(), sub, &Attachment{Filename: "poster.jpg", Data: strings.NewReader("jpegbytes")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, res.Status)
	require.NotNil(t, res.Event)
	assert.Equal(t, "e9", res.Event.ID)
}

func TestSubmitEvent_PendingReviewWithoutImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/events/submit", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("image")
		assert.Error(t, err)
		_, _ = w.Write([]byte(`{"success":true,"status":"pending_review","message":"Thanks! We'll review it soon."}`))
	})
	client := newTestClient(t, mux)

	sub := models.EventSubmission{
		Title:    "Quiz night",
		Location: "The Crown",
		StartsAt: time.Date(2026, 10, 22, 20, 0, 0, 0, time.UTC),
	}
	res, err := client.SubmitEvent(context.Background(), sub, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, res.Status)
	assert.Equal(t, "Thanks! We'll review it soon.", res.Message)
}

func TestSubmitEvent_RejectsInvalidForm(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	_, err := client.SubmitEvent(context.Background(), models.EventSubmission{Title: "No place or time"}, nil)
	assert.Error(t, err)
}
