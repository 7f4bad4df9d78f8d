// internal/browser/executor.go
package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/config"
)

// Executor implements schemas.CommandExecutor against a live session.
// Ordinary failures (element not found, timeout, failed assertion) come back
// inside the ExecutionResult; the error return is reserved for commands that
// are malformed beyond executing, which the parser should have rejected.
type Executor struct {
	logger  *zap.Logger
	session *Session
	cfg     config.BrowserConfig
}

var _ schemas.CommandExecutor = (*Executor)(nil)

// NewExecutor wires an executor to a session.
func NewExecutor(logger *zap.Logger, session *Session, cfg config.BrowserConfig) *Executor {
	return &Executor{
		logger:  logger.Named("executor"),
		session: session,
		cfg:     cfg,
	}
}

// Execute runs one structured command against the page.
func (e *Executor) Execute(ctx context.Context, cmd schemas.StructuredCommand) (schemas.ExecutionResult, error) {
	if cmd.Kind.RequiresSelector() && cmd.Selector == nil {
		return schemas.ExecutionResult{}, fmt.Errorf("command %s requires a selector", cmd.Kind)
	}

	timeout := e.cfg.ActionTimeout
	if cmd.Kind == schemas.KindNavigate {
		timeout = e.cfg.NavigationTimeout
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	start := time.Now()
	result, err := e.dispatch(ctx, cmd, timeout)
	if err != nil {
		return schemas.ExecutionResult{}, err
	}

	e.logger.Debug("Executed command",
		zap.String("kind", string(cmd.Kind)),
		zap.Bool("success", result.Success),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

func (e *Executor) dispatch(ctx context.Context, cmd schemas.StructuredCommand, timeout time.Duration) (schemas.ExecutionResult, error) {
	switch cmd.Kind {
	case schemas.KindNavigate:
		url := cmd.Param("url")
		if url == "" {
			return schemas.ExecutionResult{}, fmt.Errorf("NAVIGATE requires a url parameter")
		}
		return e.runResult(ctx, timeout, chromedp.Navigate(url))

	case schemas.KindGoBack:
		return e.runResult(ctx, timeout, chromedp.NavigateBack())

	case schemas.KindGoForward:
		return e.runResult(ctx, timeout, chromedp.NavigateForward())

	case schemas.KindWait:
		return e.execWait(ctx, cmd)

	case schemas.KindWaitForSelector:
		return e.withSelector(ctx, cmd, timeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
			return chromedp.WaitVisible(sel, opts...)
		})

	case schemas.KindClick:
		return e.withSelector(ctx, cmd, timeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
			return chromedp.Click(sel, opts...)
		})

	case schemas.KindFill:
		value := cmd.Param("value")
		return e.withSelector(ctx, cmd, timeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
			return chromedp.Tasks{
				chromedp.Clear(sel, opts...),
				chromedp.SendKeys(sel, value, opts...),
			}
		})

	case schemas.KindSelectOption:
		value := cmd.Param("value")
		return e.withSelector(ctx, cmd, timeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
			return chromedp.SetValue(sel, value, opts...)
		})

	case schemas.KindHover:
		return e.withSelector(ctx, cmd, timeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
			return hoverAction(sel, opts)
		})

	case schemas.KindAssertVisible:
		return e.withSelector(ctx, cmd, timeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
			return chromedp.WaitVisible(sel, opts...)
		})

	case schemas.KindAssertHidden:
		return e.execAssertHidden(ctx, cmd, timeout)

	case schemas.KindAssertText:
		return e.execAssertText(ctx, cmd, timeout)

	case schemas.KindAssertValue:
		return e.execAssertValue(ctx, cmd, timeout)

	case schemas.KindAssertURL:
		return e.execAssertURL(ctx, cmd, timeout)

	default:
		return schemas.ExecutionResult{}, fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
}

// execWait pauses for the timeout parameter (milliseconds, default 1000).
func (e *Executor) execWait(ctx context.Context, cmd schemas.StructuredCommand) (schemas.ExecutionResult, error) {
	ms := 1000
	if raw := cmd.Param("timeout"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return schemas.ExecutionResult{Success: false, Error: fmt.Sprintf("invalid timeout %q", raw)}, nil
		}
		ms = parsed
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return schemas.ExecutionResult{Success: true}, nil
	case <-ctx.Done():
		return schemas.ExecutionResult{Success: false, Error: ctx.Err().Error()}, nil
	}
}

func (e *Executor) execAssertHidden(ctx context.Context, cmd schemas.StructuredCommand, timeout time.Duration) (schemas.ExecutionResult, error) {
	// Hidden means absent or not rendered, so a failed lookup is a pass here.
	res, err := e.withSelector(ctx, cmd, timeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
		return chromedp.WaitVisible(sel, opts...)
	})
	if err != nil {
		return schemas.ExecutionResult{}, err
	}
	if res.Success {
		return schemas.ExecutionResult{Success: false, Error: fmt.Sprintf("element %s is visible", cmd.Selector)}, nil
	}
	return schemas.ExecutionResult{Success: true}, nil
}

func (e *Executor) execAssertText(ctx context.Context, cmd schemas.StructuredCommand, timeout time.Duration) (schemas.ExecutionResult, error) {
	expected := cmd.Param("value")
	var actual string
	res, err := e.withSelector(ctx, cmd, timeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
		return chromedp.Text(sel, &actual, opts...)
	})
	if err != nil || !res.Success {
		return res, err
	}
	if !strings.Contains(actual, expected) {
		return schemas.ExecutionResult{
			Success: false,
			Error:   fmt.Sprintf("text assertion failed: expected %q within %q", expected, truncateForError(actual)),
		}, nil
	}
	return schemas.ExecutionResult{Success: true}, nil
}

func (e *Executor) execAssertValue(ctx context.Context, cmd schemas.StructuredCommand, timeout time.Duration) (schemas.ExecutionResult, error) {
	expected := cmd.Param("value")
	var actual string
	res, err := e.withSelector(ctx, cmd, timeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
		return chromedp.Value(sel, &actual, opts...)
	})
	if err != nil || !res.Success {
		return res, err
	}
	if actual != expected {
		return schemas.ExecutionResult{
			Success: false,
			Error:   fmt.Sprintf("value assertion failed: expected %q, got %q", expected, actual),
		}, nil
	}
	return schemas.ExecutionResult{Success: true}, nil
}

func (e *Executor) execAssertURL(ctx context.Context, cmd schemas.StructuredCommand, timeout time.Duration) (schemas.ExecutionResult, error) {
	expected := cmd.Param("value")
	if expected == "" {
		expected = cmd.Param("url")
	}
	var current string
	res, err := e.runResult(ctx, timeout, chromedp.Location(&current))
	if err != nil || !res.Success {
		return res, err
	}
	if !strings.Contains(current, expected) {
		return schemas.ExecutionResult{
			Success: false,
			Error:   fmt.Sprintf("URL assertion failed: expected %q within %q", expected, current),
		}, nil
	}
	return schemas.ExecutionResult{Success: true}, nil
}

// withSelector resolves the primary selector and then each fallback in order,
// building the action fresh per candidate. The first candidate whose action
// completes wins; the reported error is the primary's.
func (e *Executor) withSelector(ctx context.Context, cmd schemas.StructuredCommand, timeout time.Duration, build func(sel string, opts []chromedp.QueryOption) chromedp.Action) (schemas.ExecutionResult, error) {
	candidates := make([]schemas.Selector, 0, 1+len(cmd.Fallbacks))
	candidates = append(candidates, *cmd.Selector)
	candidates = append(candidates, cmd.Fallbacks...)

	var firstErr string
	for i, candidate := range candidates {
		sel, opts, err := resolveSelector(candidate)
		if err != nil {
			return schemas.ExecutionResult{}, err
		}

		res, runErr := e.runResult(ctx, timeout, build(sel, opts))
		if runErr != nil {
			return schemas.ExecutionResult{}, runErr
		}
		if res.Success {
			if i > 0 {
				e.logger.Debug("Fallback selector succeeded",
					zap.String("primary", cmd.Selector.String()),
					zap.String("fallback", candidate.String()))
			}
			return res, nil
		}
		if firstErr == "" {
			firstErr = res.Error
		}
	}
	return schemas.ExecutionResult{Success: false, Error: firstErr}, nil
}

// runResult runs actions under a bounded deadline and folds run failures into
// the result. Caller context cancellation still surfaces as a failure string;
// the engine decides whether to keep going.
func (e *Executor) runResult(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) (schemas.ExecutionResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := e.session.Run(runCtx, actions...); err != nil {
		return schemas.ExecutionResult{Success: false, Error: err.Error()}, nil
	}
	return schemas.ExecutionResult{Success: true}, nil
}

// resolveSelector maps a strategy/value pair onto a chromedp query. Attribute
// strategies compile to CSS; text compiles to an XPath axis because CSS has
// no text combinator.
func resolveSelector(s schemas.Selector) (string, []chromedp.QueryOption, error) {
	switch s.Strategy {
	case schemas.StrategyCSS:
		return s.Value, []chromedp.QueryOption{chromedp.ByQuery}, nil
	case schemas.StrategyXPath:
		return s.Value, []chromedp.QueryOption{chromedp.BySearch}, nil
	case schemas.StrategyText:
		xpath := fmt.Sprintf(`//*[normalize-space(text())=%s]`, xpathLiteral(s.Value))
		return xpath, []chromedp.QueryOption{chromedp.BySearch}, nil
	case schemas.StrategyRole:
		return fmt.Sprintf(`[role=%q]`, s.Value), []chromedp.QueryOption{chromedp.ByQuery}, nil
	case schemas.StrategyTestID:
		return fmt.Sprintf(`[data-testid=%q]`, s.Value), []chromedp.QueryOption{chromedp.ByQuery}, nil
	case schemas.StrategyPlaceholder:
		return fmt.Sprintf(`[placeholder=%q]`, s.Value), []chromedp.QueryOption{chromedp.ByQuery}, nil
	default:
		return "", nil, fmt.Errorf("unknown selector strategy %q", s.Strategy)
	}
}

// xpathLiteral quotes a string for embedding in an XPath expression, falling
// back to concat() when the value holds both quote characters.
func xpathLiteral(v string) string {
	switch {
	case !strings.Contains(v, `"`):
		return `"` + v + `"`
	case !strings.Contains(v, "'"):
		return "'" + v + "'"
	default:
		parts := strings.Split(v, `"`)
		quoted := make([]string, 0, len(parts)*2)
		for i, part := range parts {
			if i > 0 {
				quoted = append(quoted, `'"'`)
			}
			quoted = append(quoted, `"`+part+`"`)
		}
		return "concat(" + strings.Join(quoted, ", ") + ")"
	}
}

// hoverAction moves the pointer to the center of the matched element's box
// model. chromedp has no built-in hover, so this drives the raw CDP input
// domain the same way its click actions do.
func hoverAction(sel string, opts []chromedp.QueryOption) chromedp.Action {
	queryOpts := append([]chromedp.QueryOption{}, opts...)
	queryOpts = append(queryOpts, chromedp.NodeVisible)
	return chromedp.QueryAfter(sel, func(ctx context.Context, _ runtime.ExecutionContextID, nodes ...*cdp.Node) error {
		if len(nodes) == 0 {
			return fmt.Errorf("no nodes matched %q", sel)
		}
		box, err := dom.GetBoxModel().WithNodeID(nodes[0].NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve box model: %w", err)
		}
		if len(box.Content) < 8 {
			return fmt.Errorf("degenerate box model for %q", sel)
		}
		x := (box.Content[0] + box.Content[4]) / 2
		y := (box.Content[1] + box.Content[5]) / 2
		return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
	}, queryOpts...)
}

func truncateForError(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
