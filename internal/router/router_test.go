package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/iliyamo/song-sponsorship/internal/auth"
	"github.com/iliyamo/song-sponsorship/internal/config"
	"github.com/iliyamo/song-sponsorship/internal/handler"
	"github.com/iliyamo/song-sponsorship/internal/metrics"
	"github.com/iliyamo/song-sponsorship/internal/model"
	"github.com/iliyamo/song-sponsorship/internal/repository"
	"github.com/iliyamo/song-sponsorship/internal/service"
	"github.com/iliyamo/song-sponsorship/internal/testutil"
)

type countingNotifier struct {
	calls int
	err   error
}

func (n *countingNotifier) SponsorshipReceived(context.Context, model.Sponsor, model.Song) error {
	n.calls++
	return n.err
}

type app struct {
	e        *echo.Echo
	adminH   *handler.AdminHandler
	db       *gorm.DB
	notifier *countingNotifier
	token    string
}

func newApp(t *testing.T, missingSongStatus int) *app {
	t.Helper()
	return newAppWithLimits(t, missingSongStatus, Limits{Logger: zerolog.Nop()})
}

func newAppWithLimits(t *testing.T, missingSongStatus int, limits Limits) *app {
	t.Helper()
	db := testutil.NewStore(t)
	songs := repository.NewSongRepo(db)
	sponsors := repository.NewSponsorRepo(db)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	n := &countingNotifier{}

	sponsorships := service.NewSponsorshipService(service.SponsorshipDeps{
		Songs: songs, Sponsors: sponsors, Notifier: n, Metrics: m, Logger: zerolog.Nop(),
	})
	cat := service.NewCatalogService(songs, m, zerolog.Nop())

	sessions := auth.NewSessionProvider("test-secret", time.Hour)
	cred, err := auth.NewPasswordCredential("geheim", "", bcrypt.MinCost)
	require.NoError(t, err)

	e := echo.New()
	adminH := handler.NewAdminHandler(songs, sponsors, cat, sponsorships)
	RegisterRoutes(e, db, reg)
	RegisterPublic(e, handler.NewPublicHandler(songs, sponsorships, missingSongStatus), limits)
	RegisterAuth(e, handler.NewAuthHandler(sessions, cred, false), sessions, limits)
	RegisterAdmin(e, adminH, sessions, limits)

	a := &app{e: e, adminH: adminH, db: db, notifier: n}
	rec := a.do(t, http.MethodPost, "/admin/login", `{"password":"geheim"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sess struct{ Token string }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	a.token = sess.Token
	return a
}

func (a *app) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) admin(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	return a.do(t, method, path, body, a.token)
}

func seedSong(t *testing.T, db *gorm.DB, applicants int) model.Song {
	return testutil.SeedSong(t, db, model.Song{
		Name: "Lied A", Composer: "Komponist X", Arrangement: "SATB",
		Count: 3, UnitPrice: 2.5, TotalPrice: 7.5, ApplicantCount: applicants,
	})
}

func TestHealthAndMetrics(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/readyz", "", "").Code)

	song := seedSong(t, a.db, 0)
	a.do(t, http.MethodPost, "/sponsor", sponsorBody(song.ID, "123"), "")
	rec := a.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "songsponsor_sponsorships_created_total 1")
}

func TestPublicSongsHideSponsors(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	song := seedSong(t, a.db, 0)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/sponsor", sponsorBody(song.ID, "123"), "").Code)

	rec := a.do(t, http.MethodGet, "/songs", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var songs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &songs))
	require.Len(t, songs, 1)
	assert.Equal(t, "Lied A", songs[0]["name"])
	assert.Equal(t, "SATB", songs[0]["besetzung"])
	assert.EqualValues(t, 1, songs[0]["bewerber"])
	assert.NotContains(t, songs[0], "sponsors")
}

func TestPublicSongsEmptyIsArray(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	rec := a.do(t, http.MethodGet, "/songs", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func sponsorBody(songID uint64, phone string) string {
	b, _ := json.Marshal(map[string]any{
		"firstName": "Max", "lastName": "Muster", "email": "m@x.de", "phone": phone,
		"message": "Hi", "songId": songID,
		"songDetails": map[string]any{"name": "Lied A", "komponist": "Komponist X", "besetzung": "SATB", "anzahl": 3, "preis": 2.5, "gesamtpreis": 7.5},
	})
	return string(b)
}

func TestSponsor_Success(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	song := seedSong(t, a.db, 2)

	rec := a.do(t, http.MethodPost, "/sponsor", sponsorBody(song.ID, "123"), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Success   bool   `json:"success"`
		SponsorID uint64 `json:"sponsorId"`
		EmailSent bool   `json:"emailSent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotZero(t, resp.SponsorID)
	assert.True(t, resp.EmailSent)
	assert.Equal(t, 3, testutil.ApplicantCount(t, a.db, song.ID))
	assert.Equal(t, 1, a.notifier.calls)
}

func TestSponsor_ValidationAndMissingSong(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	song := seedSong(t, a.db, 0)

	rec := a.do(t, http.MethodPost, "/sponsor", sponsorBody(song.ID, ""), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"phone is required"}`, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/sponsor", `{"songId":"x"`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/sponsor", sponsorBody(999, "123"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Zero(t, testutil.CountRows(t, a.db, &model.Sponsor{}))
	assert.Equal(t, 0, a.notifier.calls)

	legacy := newApp(t, http.StatusInternalServerError)
	rec = legacy.do(t, http.MethodPost, "/sponsor", sponsorBody(999, "123"), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSponsor_MailFailureStillSucceeds(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	a.notifier.err = assert.AnError
	song := seedSong(t, a.db, 0)

	rec := a.do(t, http.MethodPost, "/sponsor", sponsorBody(song.ID, "123"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"emailSent":false`)
	assert.Equal(t, 1, testutil.ApplicantCount(t, a.db, song.ID))
}

func TestAdminRequiresSession(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/admin/songs"},
		{http.MethodPost, "/admin/songs"},
		{http.MethodPatch, "/admin/songs/1"},
		{http.MethodDelete, "/admin/songs/1"},
		{http.MethodPost, "/admin/songs/bulk"},
		{http.MethodGet, "/admin/sponsors"},
		{http.MethodDelete, "/admin/sponsors/1"},
		{http.MethodGet, "/admin/sponsors/export"},
		{http.MethodGet, "/admin/me"},
	} {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := a.do(t, r.method, r.path, "", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			rec = a.do(t, r.method, r.path, "", "forged.token.value")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	rec := a.do(t, http.MethodPost, "/admin/login", `{"password":"falsch"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(t, http.MethodPost, "/admin/login", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/admin/login", `{"password":"geheim"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var session *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.CookieName {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, 3600, session.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.AddCookie(session)
	me := httptest.NewRecorder()
	a.e.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"role":"ADMIN"`)

	rec = a.do(t, http.MethodPost, "/admin/logout", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), auth.CookieName+"=;")
}

func TestAdminSongLifecycle(t *testing.T) {
	a := newApp(t, http.StatusNotFound)

	rec := a.admin(t, http.MethodPost, "/admin/songs",
		`{"name":"Neu","komponist":"K","besetzung":"SATB","anzahl":2,"preis":5,"gesamtpreis":10,"bewerber":7}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Song
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 0, created.ApplicantCount)

	rec = a.admin(t, http.MethodPost, "/admin/songs", `{"name":"Ohne Rest"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/admin/songs/" + jsonID(created.ID)
	rec = a.admin(t, http.MethodPatch, path, `{"name":"","preis":6.5,"komponist":null,"bewerber":99}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Song
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Neu", updated.Name)
	assert.Equal(t, "K", updated.Composer)
	assert.Equal(t, 6.5, updated.UnitPrice)
	assert.Equal(t, 0, updated.ApplicantCount)

	assert.Equal(t, http.StatusNotFound, a.admin(t, http.MethodPatch, "/admin/songs/999", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, a.admin(t, http.MethodPatch, "/admin/songs/abc", `{}`).Code)

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/sponsor", sponsorBody(created.ID, "1"), "").Code)
	rec = a.admin(t, http.MethodGet, "/admin/songs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Song
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Len(t, list[0].Sponsors, 1)

	rec = a.admin(t, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Song erfolgreich gelöscht"}`, rec.Body.String())
	assert.Zero(t, testutil.CountRows(t, a.db, &model.Sponsor{}))
	assert.Equal(t, http.StatusNotFound, a.admin(t, http.MethodDelete, path, "").Code)
}

func jsonID(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestAdminBulk(t *testing.T) {
	a := newApp(t, http.StatusNotFound)

	rec := a.admin(t, http.MethodPost, "/admin/songs/bulk",
		`[{"name":"A","komponist":"B","besetzung":"SATB","anzahl":2,"preis":5,"gesamtpreis":10},
		  {"name":"","komponist":"C","besetzung":"SATB","anzahl":1,"preis":1,"gesamtpreis":1}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "row 2")
	assert.Zero(t, testutil.CountRows(t, a.db, &model.Song{}))

	rec = a.admin(t, http.MethodPost, "/admin/songs/bulk", `{"name":"not an array"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.admin(t, http.MethodPost, "/admin/songs/bulk", `[]`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"0 Songs erfolgreich erstellt","count":0}`, rec.Body.String())

	rec = a.admin(t, http.MethodPost, "/admin/songs/bulk",
		`[{"name":"A","komponist":"B","besetzung":"SATB","anzahl":2,"preis":5,"gesamtpreis":10},
		  {"name":"C","komponist":"D","besetzung":"SSA","anzahl":1,"preis":1,"gesamtpreis":1,"bewerber":3}]`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"2 Songs erfolgreich erstellt","count":2}`, rec.Body.String())
}

func TestAdminImportAndExport(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	csvBody := "name,komponist,anzahl,preis,gesamtpreis,besetzung\n" +
		`"Lied A","Komponist X",3,"2.50 €","7.50 €","SATB"` + "\n"

	req := httptest.NewRequest(http.MethodPost, "/admin/songs/import", strings.NewReader(csvBody))
	req.Header.Set(echo.HeaderContentType, "text/csv")
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "songs.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("header\n" + `"Lied B","Komponist Y",1,"4,00","4,00","SSA"` + "\n"))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/admin/songs/import", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	rec = httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, testutil.CountRows(t, a.db, &model.Song{}))

	var first model.Song
	require.NoError(t, a.db.Order("id").First(&first).Error)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/sponsor", sponsorBody(first.ID, "123"), "").Code)

	rec = a.admin(t, http.MethodGet, "/admin/sponsors/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "sponsoren_")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Vorname,Nachname,Email,Telefon,Nachricht,Song Name,Song Komponist,Song Anzahl,Song Preis pro Stück,Song Gesamtpreis,Song Bewerber,Song Besetzung", strings.TrimSpace(lines[0]))
	assert.Equal(t, `"Max","Muster","m@x.de","123","Hi","Lied A","Komponist X","3","2.5","7.5","1","SATB"`, strings.TrimSpace(lines[1]))

	rec = a.admin(t, http.MethodGet, "/admin/songs/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Lied B","Komponist Y","1","4","4","SSA"`)
}

func TestAdminSponsors(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	song := seedSong(t, a.db, 0)
	rec := a.do(t, http.MethodPost, "/sponsor", sponsorBody(song.ID, "123"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		SponsorID uint64 `json:"sponsorId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = a.admin(t, http.MethodGet, "/admin/sponsors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sponsors []model.Sponsor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sponsors))
	require.Len(t, sponsors, 1)
	require.NotNil(t, sponsors[0].Song)
	assert.Equal(t, "Lied A", sponsors[0].Song.Name)

	path := "/admin/sponsors/" + jsonID(resp.SponsorID)
	rec = a.admin(t, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Sponsor erfolgreich gelöscht"}`, rec.Body.String())
	assert.Equal(t, 0, testutil.ApplicantCount(t, a.db, song.ID))

	rec = a.admin(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminImportRejectsOversizedBody(t *testing.T) {
	a := newApp(t, http.StatusNotFound)
	a.adminH.MaxUploadBytes = 256

	var csvBody strings.Builder
	csvBody.WriteString("name,komponist,anzahl,preis,gesamtpreis,besetzung\n")
	for i := 0; i < 20; i++ {
		csvBody.WriteString(`"Lied","Komponist",1,"1.00","1.00","SATB"` + "\n")
	}
	require.Greater(t, csvBody.Len(), 256)

	req := httptest.NewRequest(http.MethodPost, "/admin/songs/import", strings.NewReader(csvBody.String()))
	req.Header.Set(echo.HeaderContentType, "text/csv")
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"error":"upload too large"}`, rec.Body.String())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "songs.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(csvBody.String()))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/admin/songs/import", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	rec = httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())

	rows := make([]map[string]any, 10)
	for i := range rows {
		rows[i] = map[string]any{"name": "Lied", "komponist": "K", "besetzung": "SATB", "anzahl": 1, "preis": 1, "gesamtpreis": 1}
	}
	bulk, _ := json.Marshal(rows)
	rec = a.admin(t, http.MethodPost, "/admin/songs/bulk", string(bulk))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())

	assert.EqualValues(t, 0, testutil.CountRows(t, a.db, &model.Song{}))
}

func TestPublicCacheAndRateLimitWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := newAppWithLimits(t, http.StatusNotFound, Limits{
		Cache: config.CacheConfig{
			Enabled: true, Methods: []string{"GET"}, TTL: time.Minute,
			KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 20,
		},
		RateLimit: config.RateLimitConfig{
			Enabled: true, Capacity: 3, RefillTokens: 1, RefillInterval: time.Minute,
			TTL: 10 * time.Minute, KeyStrategy: "ip_route", Prefix: "rl",
		},
		Redis:  rdb,
		Logger: zerolog.Nop(),
	})
	song := seedSong(t, a.db, 0)

	rec := a.do(t, http.MethodGet, "/songs", "", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `"bewerber":0`)
	rec = a.do(t, http.MethodGet, "/songs", "", "")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	// rejected intake leaves the cache alone
	rec = a.do(t, http.MethodPost, "/sponsor", sponsorBody(song.ID, ""), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "HIT", a.do(t, http.MethodGet, "/songs", "", "").Header().Get("X-Cache"))

	rec = a.do(t, http.MethodPost, "/sponsor", sponsorBody(song.ID, "123"), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodGet, "/songs", "", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `"bewerber":1`)

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/sponsor", sponsorBody(song.ID, "123"), "").Code)
	rec = a.do(t, http.MethodPost, "/sponsor", sponsorBody(song.ID, "123"), "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)
	assert.Equal(t, 2, testutil.ApplicantCount(t, a.db, song.ID))
}
