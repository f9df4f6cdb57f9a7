package handlers

import "net/http"

// The page surfaces are plain glue: the gate needs real targets for
// /chat and /login, but layout and styling live outside this service.

const chatPage = `<!DOCTYPE html>
<html>
<head><title>streamchat</title></head>
<body>
<div id="chat"></div>
<textarea id="input" placeholder="Type your message..."></textarea>
<div id="meter"></div>
</body>
</html>
`

const loginPage = `<!DOCTYPE html>
<html>
<head><title>streamchat - login</title></head>
<body>
<form id="login"><input type="password" name="password" autofocus></form>
</body>
</html>
`

func HandleChatPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(chatPage))
}

func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(loginPage))
}

// HandleIndex sends the root path to the chat surface; the gate decides
// whether that bounces on to login.
func HandleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/chat", http.StatusFound)
}
