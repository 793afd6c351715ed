// Minimal end-to-end smoke test against a running radar server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	baseURL   = getenv("API_URL", "http://localhost:8080")
	jwtSecret = os.Getenv("JWT_SECRET")
	target    = os.Getenv("SWITCH_CONTRACT")

	client = &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	checkHealth()
	apps := listApps()
	if len(apps) > 0 {
		getApp(apps[0].ID)
		checkLike(apps[0].ID)
	}
	checkContest()
	if target != "" {
		switchContract(target)
	}

	fmt.Println("✓ all endpoints passed")
}

// ----------------------------- gallery

func checkHealth() {
	var resp struct{ Status string }
	doJSON("GET", "/healthz", "", nil, &resp, http.StatusOK)
	if resp.Status != "ok" {
		log.Fatalf("healthz: status %q", resp.Status)
	}
}

type app struct {
	ID    string
	Name  string
	Likes string
}

func listApps() []app {
	var resp struct {
		Contract string
		Err      string
		Apps     []app
	}
	doJSON("GET", "/v1/apps?sort=desc", "", nil, &resp, http.StatusOK)
	if resp.Err != "" {
		log.Fatalf("apps: %s", resp.Err)
	}
	fmt.Printf("%s: %d apps\n", resp.Contract, len(resp.Apps))
	return resp.Apps
}

func getApp(id string) {
	var a app
	doJSON("GET", "/v1/apps/"+id, "", nil, &a, http.StatusOK)
	if a.ID != id {
		log.Fatalf("app %s: got %q", id, a.ID)
	}
}

func checkLike(id string) {
	res := do("GET", "/v1/apps/"+id+"/like", "", nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusFound || !strings.Contains(res.Header.Get("Location"), "/contest/") {
		log.Fatalf("like: want redirect, got %d %q", res.StatusCode, res.Header.Get("Location"))
	}
}

func checkContest() {
	var md map[string]any
	doJSON("GET", "/v1/contest", "", nil, &md, http.StatusOK)
	fmt.Printf("contest %v is %v\n", md["name"], md["state"])
}

// ----------------------------- admin

func switchContract(addr string) {
	var token string
	if jwtSecret != "" {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "smoke",
			"exp": time.Now().Add(5 * time.Minute).Unix(),
		})
		signed, err := tok.SignedString([]byte(jwtSecret))
		if err != nil {
			log.Fatalf("sign: %v", err)
		}
		token = signed
	}
	var resp struct{ Generation uint64 }
	doJSON("POST", "/v1/contract", token, map[string]any{"address": addr}, &resp, http.StatusAccepted)
	fmt.Printf("switched to %s (generation %d)\n", addr, resp.Generation)
}

// ----------------------------- helpers

func do(method, path, token string, body any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	return res
}

func doJSON(method, path, token string, body, out any, want int) {
	res := do(method, path, token, body)
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}
