package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Home lists the live rooms with a small client that opens the game socket.
func Home(rooms []RoomSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, homeHead); err != nil {
			return err
		}
		if err := roomTable(rooms).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, homeTail)
		return err
	})
}

func roomTable(rooms []RoomSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(rooms) == 0 {
			_, err := io.WriteString(w, `<p class="empty">No rooms right now.</p>`)
			return err
		}
		_, _ = io.WriteString(w, "<table class=\"rooms\">\n<thead><tr><th>Code</th><th>Phase</th><th>Players</th><th>Opened</th></tr></thead>\n<tbody>\n")
		for _, room := range rooms {
			_, _ = io.WriteString(w, "<tr><td>"+templ.EscapeString(room.Code)+
				"</td><td>"+templ.EscapeString(room.Phase)+
				"</td><td>"+itoa(room.Players)+"/"+itoa(room.MaxPlayers)+
				"</td><td>"+formatTime(room.CreatedAt)+"</td></tr>\n")
		}
		_, err := io.WriteString(w, "</tbody>\n</table>\n")
		return err
	})
}

const homeHead = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Doodle Judge</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Doodle Judge</span>
        <h1>Vote a word. Draw it. Let the judge decide.</h1>
      </header>
      <section class="panel">
        <h2>Live rooms</h2>
`

const homeTail = `      </section>
      <section class="panel">
        <form id="joinForm">
          <input name="code" placeholder="Room code (blank to create)" autocomplete="off"/>
          <input name="name" placeholder="Display name" autocomplete="name" required/>
          <button type="submit">Go</button>
        </form>
        <pre id="log"></pre>
      </section>
    </main>
    <script>
      const form = document.getElementById("joinForm");
      const out = document.getElementById("log");
      form.addEventListener("submit", (event) => {
        event.preventDefault();
        const scheme = location.protocol === "https:" ? "wss://" : "ws://";
        const ws = new WebSocket(scheme + location.host + "/ws");
        const code = form.elements.code.value.trim();
        const name = form.elements.name.value.trim();
        ws.onopen = () => {
          if (code) {
            ws.send(JSON.stringify({ event: "join-room", data: { code, player_name: name } }));
          } else {
            ws.send(JSON.stringify({ event: "create-room", data: { player_name: name } }));
          }
        };
        ws.onmessage = (msg) => {
          out.textContent = msg.data + "\n" + out.textContent;
        };
      });
    </script>
  </body>
</html>
`
