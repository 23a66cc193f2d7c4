// Package fusiontest runs an in-process emulation of the Innosoft Fusion SSO
// endpoints and the CAS gateway in front of them, for tests.
package fusiontest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bensonnlee/SRCode/pkg/fusionauth"
)

// Paths served by Server.
const (
	PathLoginStart  = "/sso/login/login-start.php"
	PathService     = "/sso/login/login-process.php"
	PathLoginFinish = "/sso/login/login-finish.php"
	PathBarcode     = "/sso/api/barcode.php"
	PathCASLogin    = "/cas/login"

	// Ticket is the service ticket issued on a successful submit.
	Ticket = "ST-1-abcDEF123-cas"
)

// Server emulates both the Fusion endpoints and the CAS gateway on a single
// httptest server. Exported fields may be changed between requests.
type Server struct {
	srv *httptest.Server

	Username  string
	Password  string
	Execution string
	Token     string
	BarcodeID string

	// Knobs
	CASPage          string        // replaces the generated login page when set
	FailureBody      string        // body returned on bad credentials
	TicketInBody     bool          // return 200 with the ticket URL in the body
	OmitTokenHeader  bool
	BarcodeStatus    int
	BarcodeBody      string
	LoginStartDirect bool          // login-start answers 200 instead of redirecting
	LoginDelay       time.Duration // held before answering login-start

	mu              sync.Mutex
	calls           map[string]int
	casCookieOnGET  []bool
	lastSubmit      url.Values
	lastSubmitHdr   http.Header
	lastFinishHdr   http.Header
	lastBarcodeAuth string
}

// New starts a Server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	f := &Server{
		Username:    "student1",
		Password:    "correct-horse",
		Execution:   "e1s1-0f9c8b7a",
		Token:       "fusion-token-0123456789",
		BarcodeID:   "1234567890",
		FailureBody: `<div id="msg" class="errors">Authentication failed.</div>`,
		calls:       map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(PathLoginStart, f.handleLoginStart)
	mux.HandleFunc(PathCASLogin, f.handleCASLogin)
	mux.HandleFunc(PathService, f.handleService)
	mux.HandleFunc(PathLoginFinish, f.handleLoginFinish)
	mux.HandleFunc(PathBarcode, f.handleBarcode)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// Endpoints point at this server. ServiceURL is left empty so that it is
// derived from the login-start redirect.
func (f *Server) Endpoints() fusionauth.Endpoints {
	return fusionauth.Endpoints{
		LoginStart:  f.srv.URL + PathLoginStart + "?id=124",
		CASLogin:    f.srv.URL + PathCASLogin,
		LoginFinish: f.srv.URL + PathLoginFinish,
		Barcode:     f.srv.URL + PathBarcode + "?id=124",
		TokenHeader: fusionauth.DefaultTokenHeader,
	}
}

// Client is a fusionauth.Client against Endpoints.
func (f *Server) Client() *fusionauth.Client {
	return fusionauth.NewClient(f.Endpoints())
}

// URL is the base URL of the server.
func (f *Server) URL() string { return f.srv.URL }

// Close shuts the server down early, e.g. to provoke network errors.
func (f *Server) Close() { f.srv.Close() }

// ServiceURL is the CAS service callback that login-start advertises.
func (f *Server) ServiceURL() string {
	return f.srv.URL + PathService + "?id=124"
}

// TicketURL is where CAS redirects after a successful submit.
func (f *Server) TicketURL() string {
	return f.ServiceURL() + "&ticket=" + Ticket
}

// Calls counts requests received on path.
func (f *Server) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// LoginCalls counts requests on every endpoint taking part in a login.
func (f *Server) LoginCalls() int {
	return f.Calls(PathLoginStart) + f.Calls(PathCASLogin) + f.Calls(PathLoginFinish)
}

// LastSubmit is the form of the most recent CAS POST.
func (f *Server) LastSubmit() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSubmit
}

// LastSubmitHeader is the header of the most recent CAS POST.
func (f *Server) LastSubmitHeader() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSubmitHdr
}

// LastFinishHeader is the header of the most recent login-finish request.
func (f *Server) LastFinishHeader() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastFinishHdr
}

// LastBarcodeAuth is the Authorization header of the latest barcode request.
func (f *Server) LastBarcodeAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBarcodeAuth
}

// CASCookieOnGET records, per CAS GET, whether a JSESSIONID was presented.
func (f *Server) CASCookieOnGET() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.casCookieOnGET...)
}

func (f *Server) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[r.URL.Path]++
}

func (f *Server) handleLoginStart(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	if f.LoginDelay > 0 {
		time.Sleep(f.LoginDelay)
	}

	http.SetCookie(w, &http.Cookie{Name: "FUSIONSESSID", Value: "fusion-sess", Path: "/"})
	if f.LoginStartDirect {
		w.WriteHeader(http.StatusOK)
		return
	}

	target := f.srv.URL + PathCASLogin + "?service=" + url.QueryEscape(f.ServiceURL())
	http.Redirect(w, r, target, http.StatusFound)
}

func (f *Server) handleCASLogin(w http.ResponseWriter, r *http.Request) {
	f.record(r)

	switch r.Method {
	case http.MethodGet:
		_, err := r.Cookie("JSESSIONID")
		f.mu.Lock()
		f.casCookieOnGET = append(f.casCookieOnGET, err == nil)
		f.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "cas-sess", Path: "/"})
		page := f.CASPage
		if page == "" {
			page = fmt.Sprintf(`<html><body><form id="fm1" method="post">
<input id="username" name="username" type="text"/>
<input type="password" id="password" name="password"/>
<input type="hidden" name="execution" value="%s"/>
<input type="hidden" name="_eventId" value="submit"/>
</form></body></html>`, f.Execution)
		}
		_, _ = w.Write([]byte(page))

	case http.MethodPost:
		_ = r.ParseForm()
		f.mu.Lock()
		f.lastSubmit = r.PostForm
		f.lastSubmitHdr = r.Header.Clone()
		f.mu.Unlock()

		if _, err := r.Cookie("JSESSIONID"); err != nil {
			http.Error(w, "no session", http.StatusBadRequest)
			return
		}

		ok := r.PostForm.Get("username") == f.Username &&
			r.PostForm.Get("password") == f.Password &&
			r.PostForm.Get("execution") == f.Execution
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(f.FailureBody))
			return
		}

		if f.TicketInBody {
			ticket := strings.ReplaceAll(f.TicketURL(), "&", "&amp;")
			_, _ = fmt.Fprintf(w, `<html><a href="%s">Continue</a></html>`, ticket)
			return
		}
		http.Redirect(w, r, f.TicketURL(), http.StatusFound)
	}
}

// handleService is the ticket consumer; the client must never reach it.
func (f *Server) handleService(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	w.WriteHeader(http.StatusOK)
}

func (f *Server) handleLoginFinish(w http.ResponseWriter, r *http.Request) {
	f.record(r)

	f.mu.Lock()
	f.lastFinishHdr = r.Header.Clone()
	f.mu.Unlock()

	if r.Header.Get("Referer") != f.TicketURL() {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if _, err := r.Cookie("FUSIONSESSID"); err != nil {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if !f.OmitTokenHeader {
		w.Header().Set(fusionauth.DefaultTokenHeader, f.Token)
	}
	http.Redirect(w, r, "/sso/app", http.StatusFound)
}

func (f *Server) handleBarcode(w http.ResponseWriter, r *http.Request) {
	f.record(r)

	auth := r.Header.Get("Authorization")
	f.mu.Lock()
	f.lastBarcodeAuth = auth
	f.mu.Unlock()

	if f.BarcodeStatus != 0 {
		w.WriteHeader(f.BarcodeStatus)
		return
	}
	if auth != "Bearer "+f.Token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if f.BarcodeBody != "" {
		_, _ = w.Write([]byte(f.BarcodeBody))
		return
	}
	_ = json.NewEncoder(w).Encode([]map[string]string{{"AppBarcodeIdNumber": f.BarcodeID}})
}
