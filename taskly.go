// Package taskly is the Todo App web front end: the login and signup forms,
// their submission to the auth backend, and the static todos and profile
// pages.
//
// Forms are rendered on the server. Each GET of a form page creates a form
// instance held in memory; POSTs and the optional live WebSocket channel act
// on that instance, so validation, the submitting state, password visibility
// and toast notifications all live on the server.
//
//	cfg := taskly.DefaultConfig()
//	cfg.APIBaseURL = "https://api.example.com/"
//	app, err := taskly.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(app.Run(ctx, ":3000"))
package taskly
