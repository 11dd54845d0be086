package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const pageStyle = `
      body { font-family: system-ui, sans-serif; margin: 0; background: #f6f4ef; color: #1d1d1f; }
      main { max-width: 960px; margin: 0 auto; padding: 24px; }
      table { width: 100%; border-collapse: collapse; background: #fff; }
      th, td { padding: 8px 12px; border-bottom: 1px solid #e4e0d8; text-align: start; }
      .team { font-size: 2rem; font-weight: 700; }
      .tag { display: inline-block; padding: 2px 8px; border-radius: 8px; background: #ffe8cc; font-size: 0.8rem; }
      .muted { color: #777; }`

// Scoreboard renders the facilitator's read-only view of the current game. It reloads itself
// whenever the websocket feed announces a change.
func Scoreboard(data ScoreboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="` + esc(data.Language) + `" dir="` + direction(data.Language) + `">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>BravePulse</title>
    <style>` + pageStyle + `
    </style>
  </head>
  <body>
    <main>
      <header>
        <h1>BravePulse</h1>
`)
		if !data.Started {
			b.WriteString(`        <p class="muted">No game in progress.</p>
      </header>
`)
		} else {
			b.WriteString(`        <p id="roundLabel">` + RoundLabel(data.Round, data.MaxRounds) + `</p>
        <p class="team" id="teamScore">` + itoa(data.TeamScore) + `</p>
`)
			if data.CardTitle != "" {
				b.WriteString(`        <p>` + esc(data.CardEmoji) + ` ` + esc(data.CardTitle) + `</p>
`)
			}
			b.WriteString(`        <p class="muted">Updated ` + formatTime(data.LastUpdateAt) + `</p>
      </header>
      <section>
        <h2>Players</h2>
        <table>
          <thead><tr><th>Player</th><th>Self respect</th><th>Relationship</th><th>Goal</th><th>Last round</th><th>XP</th></tr></thead>
          <tbody id="scoreRows">
`)
			writeScoreRows(&b, data.Rows)
			b.WriteString(`          </tbody>
        </table>
      </section>
`)
		}
		b.WriteString(`      <section>
        <h2>Achievements</h2>
`)
		if len(data.Unlocks) == 0 {
			b.WriteString(`        <p class="muted">Nothing unlocked yet.</p>
`)
		} else {
			b.WriteString(`        <ul>
`)
			for _, unlock := range data.Unlocks {
				owner := unlock.PlayerName
				if owner == "" {
					owner = "Team"
				}
				b.WriteString(`          <li>` + esc(unlock.Icon) + ` ` + esc(unlock.Slug) + ` · ` + esc(owner) +
					` · ` + itoa(unlock.XP) + ` XP</li>
`)
			}
			b.WriteString(`        </ul>
`)
		}
		b.WriteString(`      </section>
    </main>
    <script>
      const proto = location.protocol === "https:" ? "wss://" : "ws://";
      const feed = new WebSocket(proto + location.host + "/ws");
      feed.addEventListener("message", (event) => {
        const msg = JSON.parse(event.data);
        if (msg.type === "html") {
          const target = document.querySelector(msg.selector);
          if (target) {
            target.innerHTML = msg.html;
          }
          return;
        }
        if (msg.type === "achievement_unlocked" || msg.type === "reload") {
          location.reload();
        }
      });
    </script>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ScoreRows renders only the table body so the websocket feed can swap it in place.
func ScoreRows(rows []ScoreRow) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeScoreRows(&b, rows)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeScoreRows(b *strings.Builder, rows []ScoreRow) {
	for _, row := range rows {
		b.WriteString(`            <tr data-player="` + esc(row.PlayerID) + `"><td>` + esc(row.Name))
		if row.Active {
			b.WriteString(` <span class="tag">facilitator</span>`)
		}
		if row.Fatigued {
			b.WriteString(` <span class="tag">fatigued</span>`)
		}
		b.WriteString(`</td><td>` + itoa(row.SelfRespect) + `</td><td>` + itoa(row.RelationshipHealth) +
			`</td><td>` + itoa(row.GoalAchievement) + `</td><td>` + signed(row.Delta) +
			`</td><td>` + itoa(row.XP) + `</td></tr>
`)
	}
}
