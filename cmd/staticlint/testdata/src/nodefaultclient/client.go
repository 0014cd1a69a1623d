package nodefaultclient

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

func fetch(u string) {
	resp, _ := http.Get(u) // want "http.Get uses http.DefaultClient without a timeout"
	_ = resp

	_, _ = http.Head(u) // want "http.Head uses http.DefaultClient without a timeout"

	_, _ = http.Post(u, "text/plain", strings.NewReader("")) // want "http.Post uses http.DefaultClient without a timeout"

	_, _ = http.PostForm(u, url.Values{}) // want "http.PostForm uses http.DefaultClient without a timeout"

	client := http.DefaultClient // want "use an http.Client with a timeout instead of http.DefaultClient"
	_ = client

	bounded := &http.Client{Timeout: 5 * time.Second}
	_, _ = bounded.Get(u)
}
