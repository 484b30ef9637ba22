package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cucumber/godog"

	"github.com/miguelmarques1/church-web/pkg/authn"
	"github.com/miguelmarques1/church-web/pkg/server/store"
	gormstore "github.com/miguelmarques1/church-web/pkg/server/store/gorm"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	authToken    string
	passwords    map[string]string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:        tc,
		passwords: make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^a church-web server is running$`, s.aServerIsRunning)
	sc.Step(`^a user with phone "([^"]*)" and role "([^"]*)" exists$`, s.aUserExists)
	sc.Step(`^I am logged in as "([^"]*)"$`, s.iAmLoggedInAs)
	sc.Step(`^I am anonymous$`, s.iAmAnonymous)

	// Authentication steps
	sc.Step(`^I log in with phone "([^"]*)" and password "([^"]*)"$`, s.iLogInWith)
	sc.Step(`^I log in as "([^"]*)" with the correct password$`, s.iLogInWithCorrectPassword)
	sc.Step(`^I should receive an access token for role "([^"]*)"$`, s.iShouldReceiveAnAccessToken)
	sc.Step(`^the response message should be "([^"]*)"$`, s.theResponseMessageShouldBe)

	// Request steps
	sc.Step(`^I request "([^"]*)"$`, s.iRequest)
	sc.Step(`^I check "([^"]*)" on "([^"]*)"$`, s.iCheck)
	sc.Step(`^the gate receives "([^"]*)" "([^"]*)"$`, s.theGateReceives)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the check should be (allowed|denied)$`, s.theCheckShouldBe)
	sc.Step(`^the page class should be "([^"]*)"$`, s.thePageClassShouldBe)
	sc.Step(`^the navigation should include "([^"]*)"$`, s.theNavigationShouldInclude)
	sc.Step(`^the navigation should not include "([^"]*)"$`, s.theNavigationShouldNotInclude)
	sc.Step(`^the navigation decision should be "([^"]*)"$`, s.theNavigationDecisionShouldBe)
	sc.Step(`^the response JSON field "([^"]*)" should be "([^"]*)"$`, s.theResponseJSONFieldShouldBe)
}

// Background steps

func (s *StepsContext) aServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) aUserExists(phone, role string) error {
	password := "secret-" + phone
	hash, err := authn.HashPassword(password)
	if err != nil {
		return err
	}

	users := gormstore.NewUsersStore(s.tc.DB)
	err = users.CreateUser(context.Background(), &store.User{
		Name:         "User " + phone,
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil && !errors.Is(err, store.ErrPhoneTaken) {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if errors.Is(err, store.ErrPhoneTaken) {
		// Scenarios share a database; reset the existing user.
		if err := s.tc.DB.Exec(
			`UPDATE users SET role_credentials = ?, password_hash = ? WHERE phone = ?`,
			role, hash, phone,
		).Error; err != nil {
			return err
		}
	}

	s.passwords[phone] = password
	return nil
}

func (s *StepsContext) iAmLoggedInAs(phone string) error {
	if err := s.iLogInWithCorrectPassword(phone); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d: %s", s.response.StatusCode, s.responseBody)
	}

	var envelope loginEnvelope
	if err := json.Unmarshal(s.responseBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	s.authToken = envelope.Data.AccessToken
	return nil
}

func (s *StepsContext) iAmAnonymous() error {
	s.authToken = ""
	return nil
}

// Authentication steps

type loginEnvelope struct {
	Data struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Phone string `json:"phone"`
			Role  struct {
				Name string `json:"name"`
			} `json:"role"`
		} `json:"user"`
	} `json:"data"`
	Error   bool    `json:"error"`
	Message *string `json:"message"`
}

func (s *StepsContext) iLogInWith(phone, password string) error {
	body, err := json.Marshal(map[string]string{"phone": phone, "password": password})
	if err != nil {
		return err
	}
	return s.doRequest("POST", "/login", bytes.NewReader(body), nil)
}

func (s *StepsContext) iLogInWithCorrectPassword(phone string) error {
	password, ok := s.passwords[phone]
	if !ok {
		return fmt.Errorf("no user with phone %q was created", phone)
	}
	return s.iLogInWith(phone, password)
}

func (s *StepsContext) iShouldReceiveAnAccessToken(role string) error {
	var envelope loginEnvelope
	if err := json.Unmarshal(s.responseBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if envelope.Error {
		return fmt.Errorf("login envelope reports an error: %s", s.responseBody)
	}
	if strings.Count(envelope.Data.AccessToken, ".") != 2 {
		return fmt.Errorf("access token is not a JWT: %q", envelope.Data.AccessToken)
	}
	if envelope.Data.User.Role.Name != role {
		return fmt.Errorf("expected role %q, got %q", role, envelope.Data.User.Role.Name)
	}
	return nil
}

func (s *StepsContext) theResponseMessageShouldBe(expected string) error {
	var envelope loginEnvelope
	if err := json.Unmarshal(s.responseBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Message == nil {
		return fmt.Errorf("response has no message: %s", s.responseBody)
	}
	if *envelope.Message != expected {
		return fmt.Errorf("expected message %q, got %q", expected, *envelope.Message)
	}
	return nil
}

// Request steps

func (s *StepsContext) iRequest(path string) error {
	return s.doRequest("GET", path, nil, nil)
}

func (s *StepsContext) iCheck(action, resource string) error {
	query := url.Values{}
	query.Set("resource", resource)
	query.Set("action", action)
	return s.doRequest("GET", "/permissions/check?"+query.Encode(), nil, nil)
}

func (s *StepsContext) theGateReceives(method, uri string) error {
	return s.doRequest("GET", "/gate", nil, map[string]string{
		"X-Forwarded-Method": method,
		"X-Forwarded-Uri":    uri,
	})
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theCheckShouldBe(outcome string) error {
	var check struct {
		Allowed bool `json:"allowed"`
	}
	if err := json.Unmarshal(s.responseBody, &check); err != nil {
		return fmt.Errorf("failed to decode check response: %w", err)
	}
	if check.Allowed != (outcome == "allowed") {
		return fmt.Errorf("expected check to be %s: %s", outcome, s.responseBody)
	}
	return nil
}

func (s *StepsContext) thePageClassShouldBe(expected string) error {
	return s.theResponseJSONFieldShouldBe("class", expected)
}

func (s *StepsContext) navigationHrefs() ([]string, error) {
	var nav struct {
		Items []struct {
			Href string `json:"href"`
		} `json:"items"`
	}
	if err := json.Unmarshal(s.responseBody, &nav); err != nil {
		return nil, fmt.Errorf("failed to decode navigation: %w", err)
	}
	hrefs := make([]string, 0, len(nav.Items))
	for _, item := range nav.Items {
		hrefs = append(hrefs, item.Href)
	}
	return hrefs, nil
}

func (s *StepsContext) theNavigationShouldInclude(href string) error {
	hrefs, err := s.navigationHrefs()
	if err != nil {
		return err
	}
	for _, h := range hrefs {
		if h == href {
			return nil
		}
	}
	return fmt.Errorf("navigation %v does not include %q", hrefs, href)
}

func (s *StepsContext) theNavigationShouldNotInclude(href string) error {
	hrefs, err := s.navigationHrefs()
	if err != nil {
		return err
	}
	for _, h := range hrefs {
		if h == href {
			return fmt.Errorf("navigation %v includes %q", hrefs, href)
		}
	}
	return nil
}

func (s *StepsContext) theNavigationDecisionShouldBe(expected string) error {
	return s.theResponseJSONFieldShouldBe("decision", expected)
}

func (s *StepsContext) theResponseJSONFieldShouldBe(field, expected string) error {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	value, ok := body[field]
	if !ok {
		return fmt.Errorf("response has no field %q: %s", field, s.responseBody)
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s %q, got %q", field, expected, got)
	}
	return nil
}

// Helper methods

func (s *StepsContext) doRequest(method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequest(method, s.tc.ServerURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}
