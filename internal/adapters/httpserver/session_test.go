package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/drukuje3d/internal/domain"
)

func TestSession_RoundTrip(t *testing.T) {
	s := &Server{Deps: Deps{SessionKey: testKey, Now: time.Now}}
	u := admin()

	tok, exp, err := s.issueSession(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(sessionTTL), exp, time.Minute)

	sess, err := s.verifySession(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Equal(t, u.Email, sess.Email)
	assert.True(t, sess.admin())
}

func TestSession_RejectsForeignKeyAndExpired(t *testing.T) {
	now := time.Now()
	s := &Server{Deps: Deps{SessionKey: testKey, Now: func() time.Time { return now }}}
	tok, _, err := s.issueSession(customer())
	require.NoError(t, err)

	other := &Server{Deps: Deps{SessionKey: []byte("other-key"), Now: time.Now}}
	_, err = other.verifySession(tok)
	assert.Error(t, err)

	later := &Server{Deps: Deps{SessionKey: testKey, Now: func() time.Time { return now.Add(sessionTTL + time.Hour) }}}
	_, err = later.verifySession(tok)
	assert.Error(t, err)
}

func TestSession_CookieIsAccepted(t *testing.T) {
	s := &Server{Deps: Deps{SessionKey: testKey, Now: time.Now}}
	u := customer()
	rec := httptest.NewRecorder()
	_, err := s.writeSession(rec, u)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	sess := s.currentUser(req)
	require.NotNil(t, sess)
	assert.Equal(t, u.ID, sess.UserID)
}

func TestRequireAdmin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, call{method: http.MethodGet, path: "/api/admin/orders"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, call{method: http.MethodGet, path: "/api/admin/orders", user: customer()})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domain.ErrForbidden.Error(), decodeBody[errorBody](t, rec).Error)
}
