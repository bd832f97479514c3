package photocredit

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo-contrib/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/photocredit/credit"
)

const testPassword = "s3cret"

// adminSession enables sessions on ta, logs in and returns the session cookies.
func adminSession(t *testing.T, ta *testApp) []*http.Cookie {
	t.Helper()
	ta.Config.AdminPassword = testPassword
	ta.Config.SessionSecret = "0123456789abcdef0123456789abcdef"
	ta.loginLimiter = NewLoginLimiter(5, time.Minute)
	t.Cleanup(ta.loginLimiter.Stop)
	ta.Echo.Use(session.Middleware(ta.newSessionStore()))

	rec := ta.post(t, "/admin/login/", url.Values{"password": {testPassword}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "login should set a session cookie")
	return cookies
}

func (ta *testApp) post(t *testing.T, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ta.Echo.ServeHTTP(rec, req)
	return rec
}

func withAdminViews(ta *testApp) {
	ta.Views.AdminLogin = func(bool, string) templ.Component { return textComponent("login") }
	ta.Views.AdminImageForm = func(img Attachment, _ []string, msg, _ string) templ.Component {
		return textComponent("image:" + msg)
	}
	ta.Views.AdminSettings = func(_ credit.Settings, msg, _ string) templ.Component {
		return textComponent("settings:" + msg)
	}
	ta.Views.AdminDashboard = func(d Dashboard) templ.Component {
		return textComponent("dashboard:" + d.Message)
	}
}

func imageForm(fields map[string]string) url.Values {
	form := url.Values{"title": {"Harbour"}, "alt_text": {"Boats"}}
	for k, v := range fields {
		form.Set(k, v)
	}
	return form
}

func TestAdminRequiresLogin(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.Echo.Use(session.Middleware(ta.newSessionStore()))

	rec := ta.post(t, "/admin/images/1/", imageForm(nil), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))
}

func TestAdminImageSaveFillsLicenseLink(t *testing.T) {
	var id int64
	ta := newTestApp(t, func(s *Store) {
		id = addImage(t, s, "harbour.jpg", nil)
	})
	withAdminViews(ta)
	cookies := adminSession(t, ta)

	rec := ta.post(t, "/admin/images/"+strconv.FormatInt(id, 10)+"/", imageForm(map[string]string{
		credit.FieldPhotographer: "Jane Doe",
		credit.FieldLicense:      "CC BY-SA",
	}), cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	att, err := ta.Store.GetAttachment(id)
	require.NoError(t, err)
	assert.Equal(t, "Boats", att.AltText)
	assert.Equal(t, "Jane Doe", att.Fields[credit.FieldPhotographer])
	assert.Equal(t, "https://creativecommons.org/licenses/by-sa/4.0/", att.Fields[credit.FieldLicenseURL])

	// An explicit link survives later saves.
	rec = ta.post(t, "/admin/images/"+strconv.FormatInt(id, 10)+"/", imageForm(map[string]string{
		credit.FieldLicense:    "CC BY-SA",
		credit.FieldLicenseURL: "https://example.com/my-license",
	}), cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	v, err := ta.Store.GetField(id, credit.FieldLicenseURL)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/my-license", v)
}

func TestAdminImageSaveRejectsRelativeURL(t *testing.T) {
	var id int64
	ta := newTestApp(t, func(s *Store) {
		id = addImage(t, s, "harbour.jpg", map[string]string{credit.FieldPhotographer: "Jane Doe"})
	})
	withAdminViews(ta)
	cookies := adminSession(t, ta)

	rec := ta.post(t, "/admin/images/"+strconv.FormatInt(id, 10)+"/", imageForm(map[string]string{
		credit.FieldPhotographer:       "Someone Else",
		credit.FieldAcquireLicensePage: "/buy",
	}), cookies)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acquire license page must be an absolute URL")

	v, _ := ta.Store.GetField(id, credit.FieldPhotographer)
	assert.Equal(t, "Jane Doe", v, "nothing is saved from an invalid form")
}

func TestAdminSettingsSave(t *testing.T) {
	ta := newTestApp(t, nil)
	withAdminViews(ta)
	cookies := adminSession(t, ta)

	rec := ta.post(t, "/admin/settings/", url.Values{
		"target_categories":    {"photolog, Travel"},
		"default_license_page": {"licensing"},
	}, cookies)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ta.post(t, "/admin/settings/", url.Values{
		"target_categories":    {"photolog, Travel"},
		"target_tags":          {"portrait"},
		"default_license_page": {"https://example.com/licensing"},
		"include_sitemap_data": {"1"},
	}, cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	s, err := ta.Store.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, []string{"photolog", "Travel"}, s.TargetCategories)
	assert.Equal(t, []string{"portrait"}, s.TargetTags)
	assert.False(t, s.AutoGenerateCopyright, "unchecked box turns the option off")
	assert.True(t, s.IncludeSitemapData)
	assert.Equal(t, "https://example.com/licensing", s.DefaultLicensePage)
}

func TestAdminLoginRateLimited(t *testing.T) {
	ta := newTestApp(t, nil)
	withAdminViews(ta)
	adminSession(t, ta)

	for i := 0; i < 5; i++ {
		rec := ta.post(t, "/admin/login/", url.Values{"password": {"wrong"}}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := ta.post(t, "/admin/login/", url.Values{"password": {testPassword}}, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAdminPostSaveTerms(t *testing.T) {
	ta := newTestApp(t, nil)
	withAdminViews(ta)
	cookies := adminSession(t, ta)

	form := url.Values{
		"title":      {"Дом у моря"},
		"slug":       {"house-by-the-sea"},
		"date":       {"2024-05-01"},
		"categories": {"Фото"},
		"tags":       {"sea, ???"},
		"published":  {"1"},
	}
	rec := ta.post(t, "/admin/save/", form, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `Category or tag "???" needs at least one letter or digit.`)
	_, err := ta.Store.GetPostAny("house-by-the-sea")
	assert.ErrorIs(t, err, ErrNotFound)

	form.Set("tags", "sea")
	rec = ta.post(t, "/admin/save/", form, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dashboard:saved", rec.Body.String())

	post, err := ta.Store.GetPostAny("house-by-the-sea")
	require.NoError(t, err)
	assert.Equal(t, []credit.Term{{Name: "Фото", Slug: "фото"}}, post.Categories)
}
