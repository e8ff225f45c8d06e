package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvernberg/wallet-device-go/device"
)

// autoConsole stands in for the device screen and buttons: it shows the
// summary in the log and answers with a fixed decision once the configured
// delay has passed.
type autoConsole struct {
	decision   device.Decision
	delay      time.Duration
	renderedAt time.Time
	log        zerolog.Logger
}

func (console *autoConsole) Render(summary string) {
	console.renderedAt = time.Now()
	console.log.Info().Str("summary", summary).Msg("approval requested")
}

func (console *autoConsole) Decision() device.Decision {

	if time.Since(console.renderedAt) < console.delay {
		return device.DecisionPending
	}

	return console.decision

}

// askConsole prompts on stdin. The read happens on its own goroutine so the
// gate can keep polling and still time out if nobody answers.
type askConsole struct {
	log     zerolog.Logger
	answers chan device.Decision
	pending bool
}

func newAskConsole(log zerolog.Logger) *askConsole {
	return &askConsole{log: log, answers: make(chan device.Decision, 1)}
}

func (console *askConsole) Render(summary string) {

	console.pending = true

	fmt.Fprintf(os.Stderr, "\n%s\napprove? [y/n]: ", summary)

	go func() {

		line, err := bufio.NewReader(os.Stdin).ReadString('\n')

		if err != nil {
			console.answers <- device.DecisionRejected
			return
		}

		switch strings.TrimSpace(strings.ToLower(line)) {
		case "y", "yes":
			console.answers <- device.DecisionApproved
		default:
			console.answers <- device.DecisionRejected
		}

	}()

}

func (console *askConsole) Decision() device.Decision {

	if !console.pending {
		return device.DecisionPending
	}

	select {
	case decision := <-console.answers:
		console.pending = false
		return decision
	default:
		return device.DecisionPending
	}

}

func consoleForPolicy(cfg approvalConfig, log zerolog.Logger) device.UserConsole {

	switch cfg.Policy {
	case "reject":
		return &autoConsole{decision: device.DecisionRejected, delay: time.Duration(cfg.DelayMs) * time.Millisecond, log: log}
	case "ask":
		return newAskConsole(log)
	default:
		return &autoConsole{decision: device.DecisionApproved, delay: time.Duration(cfg.DelayMs) * time.Millisecond, log: log}
	}

}
