package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/gymdash/internal/misc"
)

func (s *IntegrationTestSuite) TestLoginWhoAmILogout() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	login := doLogin(ctx, t, testUsername)
	s.Equal("user", login.Role)

	resp, err := http.DefaultClient.Do(newSessionRequest(ctx, t, "GET", "/a/whoami", login.Session, nil))
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var whoami misc.WhoAmIResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&whoami))
	resp.Body.Close()
	s.Equal("user", whoami.Role)
	s.False(whoami.IsAdmin)
	s.True(whoami.Session)

	resp, err = http.DefaultClient.Do(newSessionRequest(ctx, t, "GET", "/a/logout", login.Session, nil))
	s.Require().NoError(err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("logged-out", string(body))

	// the session is gone
	resp, err = http.DefaultClient.Do(newSessionRequest(ctx, t, "GET", "/a/whoami", login.Session, nil))
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestAdminLogin() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	login := doLogin(ctx, s.T(), testAdminUsername)
	s.Equal("admin", login.Role)
}

func (s *IntegrationTestSuite) TestLoginWrongPassword() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	form := url.Values{"username": {testUsername}, "password": {"nope"}}
	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/a/login", serverEndpoint), strings.NewReader(form.Encode()))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.Require().NoError(err)

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Contains(string(body), "Incorrect username or password")
}

func (s *IntegrationTestSuite) TestLoginRateLimited() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	allowed := getTestConfig("", "").LoginRateLimitMin
	statuses := make([]int, 0, allowed+2)
	for i := 0; i < allowed+2; i++ {
		form := url.Values{"username": {testUsername}, "password": {"wrong"}}
		req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/a/login", serverEndpoint), strings.NewReader(form.Encode()))
		s.Require().NoError(err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := http.DefaultClient.Do(req)
		s.Require().NoError(err)
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests {
			s.NotEmpty(resp.Header.Get("Retry-After"))
		}
	}

	for i := 0; i < allowed; i++ {
		s.Equal(http.StatusUnauthorized, statuses[i], "attempt %d", i)
	}
	s.Equal(http.StatusTooManyRequests, statuses[allowed])
	s.Equal(http.StatusTooManyRequests, statuses[allowed+1])
}

func (s *IntegrationTestSuite) TestProtectedRouteWithoutSession() {
	resp, err := http.Get(serverEndpoint + "/gymstats/exercises")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestMetricsEndpoint() {
	resp, err := http.Get(fmt.Sprintf("http://%s:%s/metrics", serverHost, metricsPort))
	s.Require().NoError(err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.Require().NoError(err)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), "gymdash_main_")
}
