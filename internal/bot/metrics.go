package bot

import "github.com/prometheus/client_golang/prometheus"

// commandsTotal counts handled commands by name and outcome
// (ok, error, denied, usage).
var commandsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_commands_total",
		Help: "Total number of bot commands handled.",
	},
	[]string{"command", "outcome"},
)

func init() {
	prometheus.MustRegister(commandsTotal)
}
