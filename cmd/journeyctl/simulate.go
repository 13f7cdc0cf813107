package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/internal/assistant"
	"superlearn/learning-portal/learning-portal-backend/internal/certificate"
	"superlearn/learning-portal/learning-portal-backend/internal/journey"
	"superlearn/learning-portal/learning-portal-backend/internal/mint"
	"superlearn/learning-portal/learning-portal-backend/internal/wallet"
	"superlearn/learning-portal/learning-portal-backend/pkg/storage"
)

type simulateOptions struct {
	answers     string
	email       string
	name        string
	ask         string
	pacing      bool
	retries     int
	certificate string
	jsonOut     bool
	timeout     time.Duration
}

var simOpts simulateOptions

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Walk one journey end to end with simulated wallet and mint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), simOpts.timeout)
		defer cancel()
		return runSimulate(ctx, cmd.OutOrStdout(), simOpts)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	f := simulateCmd.Flags()
	f.StringVar(&simOpts.answers, "answers", "1,1,2", "Comma separated option index per quiz question")
	f.StringVar(&simOpts.email, "email", "explorer@superlearn.app", "Registration email")
	f.StringVar(&simOpts.name, "name", "Explorer", "Registration name")
	f.StringVar(&simOpts.ask, "ask", "", "Ask the offline mentor a question at the AI intro step")
	f.BoolVar(&simOpts.pacing, "pacing", false, "Keep the real pacing delays between steps")
	f.IntVar(&simOpts.retries, "retries", 0, "Quiz retries after a failed attempt")
	f.StringVar(&simOpts.certificate, "certificate", "", "Write the PDF certificate to this path")
	f.BoolVar(&simOpts.jsonOut, "json", false, "Print every event as JSON")
	f.DurationVar(&simOpts.timeout, "timeout", time.Minute, "Give up after this long")
}

func parseAnswers(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad answer %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func runSimulate(ctx context.Context, out io.Writer, opts simulateOptions) error {
	answers, err := parseAnswers(opts.answers)
	if err != nil {
		return err
	}

	flow := journey.DefaultFlow()
	if len(answers) != len(flow.Questions) {
		return fmt.Errorf("need %d answers, got %d", len(flow.Questions), len(answers))
	}
	if !opts.pacing {
		flow.PacingDelays = nil
	}

	minterCfg := mint.DefaultSimulatedConfig()
	minterCfg.Delay = 0
	events := make(chan journey.Event, 256)

	ctrl, err := journey.NewController(journey.ControllerOptions{
		Flow:     flow,
		Provider: wallet.NewSimulatedProvider(wallet.SimulatedConfig{}),
		Minter:   mint.NewSimulatedMinter(minterCfg, storage.NewMemoryS3Client(), zap.NewNop()),
		Listener: journey.ListenerFunc(func(e journey.Event) { events <- e }),
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	p := &printer{out: out, json: opts.jsonOut}
	ctrl.Started()
	p.drain(events)

	waitFor := func(step journey.StepID) error {
		for {
			if ctrl.State().CurrentStep == step {
				p.drain(events)
				return nil
			}
			select {
			case e := <-events:
				p.print(e)
			case <-ctx.Done():
				return fmt.Errorf("waiting for %s: %w", step, ctx.Err())
			}
		}
	}

	if err := ctrl.Register(opts.email, opts.name); err != nil {
		return err
	}
	if err := waitFor(journey.StepWallet); err != nil {
		return err
	}

	if err := ctrl.ConnectWallet(); err != nil {
		return err
	}
	if err := waitFor(journey.StepLinkWallet); err != nil {
		return err
	}

	if err := ctrl.LinkWallet(ctx); err != nil {
		return err
	}
	if err := waitFor(journey.StepAIIntro); err != nil {
		return err
	}

	if opts.ask != "" {
		reply, err := assistant.NewMentor(assistant.NewScripted(), zap.NewNop()).
			Respond(ctx, opts.ask, assistant.ModeChat, assistant.Options{})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nmentor> %s\n\n", reply.Text)
	}

	if err := ctrl.FinishAIIntro(); err != nil {
		return err
	}
	p.drain(events)

	var result journey.QuizResult
	for attempt := 0; attempt <= opts.retries; attempt++ {
		for _, a := range answers {
			if err := ctrl.AnswerQuizQuestion(a); err != nil {
				return err
			}
			if result, err = ctrl.SubmitQuizAnswer(); err != nil {
				return err
			}
			p.drain(events)
		}
		fmt.Fprintf(out, "quiz attempt %d: %d/%d\n", attempt+1, result.Score, len(flow.Questions))
		if result.Passed {
			break
		}
	}
	if !result.Passed {
		return fmt.Errorf("quiz failed with %d/%d, %d needed", result.Score, len(flow.Questions), flow.PassThreshold)
	}

	receipt, err := ctrl.MintNFT(ctx)
	if err != nil {
		return err
	}
	p.drain(events)
	fmt.Fprintf(out, "\nbadge minted\n  token: %s\n  tx:    %s\n  owner: %s\n", receipt.TokenID, receipt.TxHash, receipt.Recipient)

	if opts.certificate != "" {
		st := ctrl.State()
		pdf, err := certificate.NewGenerator(certificate.DefaultOptions()).Generate(certificate.Data{
			LearnerName:   st.Name,
			WalletAddress: st.WalletAddress,
			QuizScore:     st.Quiz.Score,
			QuestionCount: len(flow.Questions),
			TokenID:       receipt.TokenID,
			TxHash:        receipt.TxHash,
			IssuedAt:      receipt.MintedAt,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.certificate, pdf, 0o644); err != nil {
			return fmt.Errorf("write certificate: %w", err)
		}
		fmt.Fprintf(out, "  certificate: %s\n", opts.certificate)
	}
	return nil
}

type printer struct {
	out  io.Writer
	json bool
}

func (p *printer) drain(events <-chan journey.Event) {
	for {
		select {
		case e := <-events:
			p.print(e)
		default:
			return
		}
	}
}

func (p *printer) print(e journey.Event) {
	if p.json {
		b, err := json.Marshal(e)
		if err == nil {
			fmt.Fprintln(p.out, string(b))
		}
		return
	}

	v := e.View
	line := fmt.Sprintf("%-22s step=%-13s progress=%3d%%", e.Kind, v.CurrentStep, v.Progress)
	if v.ActiveModal != "" {
		line += " modal=" + string(v.ActiveModal)
	}
	if v.Wallet.Address != "" {
		line += " wallet=" + v.Wallet.Address
	}
	if e.Kind == journey.EventQuizAnswered || e.Kind == journey.EventQuizPassed || e.Kind == journey.EventQuizFailed {
		line += fmt.Sprintf(" score=%d", v.Quiz.Score)
	}
	fmt.Fprintln(p.out, line)
}
