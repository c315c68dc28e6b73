//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"travleap-core/internal/domain/account"
	"travleap-core/tests/common/authtest"
	"travleap-core/tests/common/builder"
	"travleap-core/tests/common/dbtest"
	"travleap-core/tests/common/helper"
	"travleap-core/tests/common/httptest"
	"travleap-core/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	loginURL  = "/api/auth/login"
	logoutURL = "/api/auth/logout"
	meURL     = "/api/auth/me"
)

type authSuite struct {
	e2e.SharedSuite
	jwtHelper *authtest.JWTHelper
}

func TestAuthSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(authSuite))
}

func (s *authSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwtHelper = authtest.NewJWTHelper(s.Config.JWT)
}

func (s *authSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	dbtest.CreateTestAccount(s.T(), s.DB, "test@example.com", "traveler")
	dbtest.CreateTestAccount(s.T(), s.DB, "inactive@example.com", "traveler")

	ctx := s.T().Context()
	_, err := s.DB.Exec(ctx, "UPDATE accounts SET is_active = false WHERE email = 'inactive@example.com'")
	require.NoError(s.T(), err)
}

func (s *authSuite) TestLogin() {
	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
	}{
		{
			name:           "Normal case: Valid credentials",
			email:          "test@example.com",
			password:       "password123",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Error case: Unknown account",
			email:          "nonexistent@example.com",
			password:       "password123",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Error case: Wrong password",
			email:          "test@example.com",
			password:       "wrongpassword",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Error case: Inactive account",
			email:          "inactive@example.com",
			password:       "password123",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Error case: Empty email",
			email:          "",
			password:       "password123",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Error case: Empty password",
			email:          "test@example.com",
			password:       "",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			b := builder.NewAuthBuilder()
			b.Email = tt.email
			b.Password = tt.password

			w := helper.PerformRequest(t, s.Router, http.MethodPost, loginURL, b.BuildDTO(), "")
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedStatus == http.StatusOK {
				var loginRes struct {
					AccessToken string `json:"access_token"`
				}
				err := helper.DecodeResponseBody(t, w.Body, &loginRes)
				require.NoError(t, err)
				require.NotEmpty(t, loginRes.AccessToken)

				cookie := httptest.ExtractCookie(w, "access_token")
				require.NotNil(t, cookie, "access token cookie not set")
				require.NotEmpty(t, cookie.Value)
			}
		})
	}
}

func (s *authSuite) TestLogout() {
	s.Run("Normal case: Logout clears the access token cookie", func() {
		t := s.T()

		token := authtest.LoginUser(t, s.Router, "test@example.com", "password123")

		w := helper.PerformRequest(t, s.Router, http.MethodPost, logoutURL, nil, token)
		require.Equal(t, http.StatusNoContent, w.Code)

		cleared := httptest.ExtractCookie(w, "access_token")
		require.NotNil(t, cleared)
		require.Equal(t, -1, cleared.MaxAge)
	})

	s.Run("Normal case: Cookie-authenticated logout", func() {
		t := s.T()

		b := builder.NewAuthBuilder()
		b.Email = "test@example.com"
		w := helper.PerformRequest(t, s.Router, http.MethodPost, loginURL, b.BuildDTO(), "")
		require.Equal(t, http.StatusOK, w.Code)

		authtest.LogoutUser(t, s.Router, httptest.ExtractCookies(w))
	})

	s.Run("Auth test - Logout requires authentication", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodPost, logoutURL, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func (s *authSuite) TestMe() {
	s.Run("Normal case: Returns the caller's profile without secrets", func() {
		t := s.T()

		token := authtest.LoginUser(t, s.Router, "test@example.com", "password123")

		w := helper.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		require.Contains(t, body, "test@example.com")
		require.Contains(t, body, "traveler")
		require.NotContains(t, body, "password")
	})

	s.Run("Error case: Expired token is rejected", func() {
		t := s.T()

		accountID := dbtest.CreateTestAccount(t, s.DB, "expiry@example.com", "traveler")
		expiredToken := s.jwtHelper.CreateExpiredToken(t, accountID, account.RoleTraveler)

		w := helper.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, expiredToken)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("Auth test - Token required", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func (s *authSuite) TestConcurrentSessions() {
	s.Run("Normal case: Two logins yield independently valid tokens", func() {
		t := s.T()

		token1 := authtest.LoginUser(t, s.Router, "test@example.com", "password123")
		token2 := authtest.LoginUser(t, s.Router, "test@example.com", "password123")

		w1 := helper.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token1)
		w2 := helper.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token2)

		require.Equal(t, http.StatusOK, w1.Code)
		require.Equal(t, http.StatusOK, w2.Code)
	})
}
