package apiconn_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/adamwoolhether/apiconn"
	"github.com/adamwoolhether/apiconn/client"
	"github.com/adamwoolhether/apiconn/client/handler"
	"github.com/adamwoolhether/apiconn/client/message"
	"github.com/adamwoolhether/apiconn/client/uri"
)

type greeting struct {
	Msg string `json:"msg"`
}

func ExampleNewSession() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"msg":"hello"}`)
	}))
	defer ts.Close()

	s, err := apiconn.NewSession()
	if err != nil {
		fmt.Println("session error:", err)
		return
	}
	defer s.Close(context.Background())

	parsed, _ := url.Parse(ts.URL)
	u, _ := uri.FromURL(parsed)

	h, _ := handler.NewJSON[greeting, any]()
	task, err := s.NewTask(message.NewRequest(http.MethodGet, u), client.WithHandler(h))
	if err != nil {
		fmt.Println("task error:", err)
		return
	}

	if err := task.Start(context.Background()); err != nil {
		fmt.Println("start error:", err)
		return
	}
	if _, err := task.Wait(context.Background()); err != nil {
		fmt.Println("wait error:", err)
		return
	}

	v, _ := h.Value()
	fmt.Println(v.Msg)
	// Output: hello
}
