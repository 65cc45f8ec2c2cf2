// Package toast provides feedback notifications for taskly pages.
//
// A toast is fire-and-forget: the caller emits it and never looks at a
// result. Where it ends up depends on the Emitter. A classic form POST
// collects toasts in a Queue and renders them into the response; a live
// connection pushes them to the browser as they happen.
//
// # Server-Side Usage
//
//	func submitLogin(ctx context.Context, q *toast.Queue) {
//	    if err := client.Login(ctx, email, password); err != nil {
//	        toast.Error(q, "Login failed!")
//	        return
//	    }
//	    toast.Success(q, "Login successful!")
//	}
//
// # Client-Side Handler
//
// Live pages dispatch a DOM CustomEvent named "taskly:toast" whose detail is
// { level, message }. The bundled live script renders it into the toast
// region; applications may listen for it too:
//
//	window.addEventListener("taskly:toast", (e) => {
//	    const { level, message } = e.detail;
//	    showCustomToast(level, message);
//	});
package toast
