package hackernews

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var items = map[int]string{
	1:  `{"id":1,"type":"story","by":"pg","title":"Ask HN: Why Go?","text":"Curious &amp; eager<p>Second","kids":[2,3],"descendants":4,"score":50}`,
	2:  `{"id":2,"type":"comment","by":"a","text":"Because <i>simple</i>","kids":[4,5]}`,
	3:  `{"id":3,"type":"comment","by":"b","text":"Tooling"}`,
	4:  `{"id":4,"type":"comment","deleted":true}`,
	5:  `{"id":5,"type":"comment","by":"","text":"nested"}`,
	10: `{"id":10,"type":"job","title":"Hiring"}`,
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/askstories.json" {
			w.Write([]byte(`[1,10]`))
			return
		}
		var id int
		if _, err := fmt.Sscanf(r.URL.Path, "/item/%d.json", &id); err == nil {
			if body, ok := items[id]; ok {
				w.Write([]byte(body))
				return
			}
			w.Write([]byte(`null`))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListingStoriesOnly(t *testing.T) {
	c := NewClient(newServer(t).URL, 0)
	subs, err := c.Listing(context.Background(), "ask", 10)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != "1" {
		t.Fatalf("subs=%+v, want only story 1", subs)
	}
	if subs[0].Comments != 4 || subs[0].Board != "askstories" {
		t.Errorf("story=%+v", subs[0])
	}
}

func TestThread(t *testing.T) {
	c := NewClient(newServer(t).URL, 0)
	th, err := c.Thread(context.Background(), "1")
	if err != nil {
		t.Fatalf("Thread: %v", err)
	}
	if th.Root.Body != "Curious & eager\n\nSecond" {
		t.Errorf("root body=%q", th.Root.Body)
	}
	var got []string
	for _, cm := range th.Comments {
		got = append(got, cm.ID)
	}
	if strings.Join(got, ",") != "2,3,5" {
		t.Fatalf("comments=%v, want 2,3,5 (deleted 4 dropped)", got)
	}
	c2 := th.Comments[0]
	if c2.Body != "Because simple" {
		t.Errorf("body=%q", c2.Body)
	}
	if strings.Join(c2.Children, ",") != "4,5" {
		t.Errorf("children=%v, deleted ids stay as references", c2.Children)
	}
	if th.Comments[2].Author != "[deleted]" {
		t.Errorf("author=%q", th.Comments[2].Author)
	}
}

func TestThreadMaxComments(t *testing.T) {
	c := NewClient(newServer(t).URL, 1)
	th, err := c.Thread(context.Background(), "1")
	if err != nil {
		t.Fatalf("Thread: %v", err)
	}
	if len(th.Comments) != 1 {
		t.Fatalf("comments=%d, want 1", len(th.Comments))
	}
}

func TestThreadInvalidID(t *testing.T) {
	c := NewClient(newServer(t).URL, 0)
	if _, err := c.Thread(context.Background(), "abc"); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
	if _, err := c.Thread(context.Background(), "99"); err == nil {
		t.Fatalf("expected error for missing item")
	}
}
