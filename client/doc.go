// Package client schedules HTTP exchanges. A [Session] owns a registry
// of active [Task] values and the settings shared by them; each task
// runs its [RequestBuilder], [Connector] and [ResponseHandler] on its
// own goroutine.
//
// # Running a Task
//
//	s, err := client.NewSession()
//	u := s.URL(uri.Settings{Host: layered.Ptr("api.example.com")}).Join("v1", "items")
//	h, _ := handler.NewJSON[Item, APIError]()
//	t, err := s.JSON(message.NewRequest(http.MethodPost, u), item, h)
//	err = t.Start(ctx)
//	resp, err := t.Wait(ctx)
//
// Connectors never fail: transport, builder and file errors reach the
// handler in [message.Response.Err] with no status code. A stopped task
// still cleans its builder and its handler receives a response carrying
// [ErrTaskCancelled].
//
// # Settings
//
// Component settings are layered. A value given at the call site wins
// over the value stored with [StoreSettings], which wins over the
// library default:
//
//	err = client.StoreSettings(s, connector.Settings{ConnectTimeout: layered.Ptr(5 * time.Second)})
//
// # Limiting Concurrency
//
// Sessions start every task immediately. Use a [Group] to cap the number
// of tasks in flight:
//
//	g := client.NewGroup(4)
//	for _, t := range tasks {
//		g.Go(ctx, t)
//	}
//	err = g.Wait()
package client
