package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/panjf2000/ants/v2"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KOMKZ/go-yogan-binding/di"
	"github.com/KOMKZ/go-yogan-binding/flagx"
	"github.com/KOMKZ/go-yogan-binding/validator"
)

type resolveRequest struct {
	Count   int           `flag:"count,n" usage:"resolutions per scope" default:"100"`
	Scopes  int           `flag:"scopes,s" usage:"distinct request ids" default:"4"`
	Workers int           `flag:"workers,w" usage:"concurrent resolvers per scope" default:"4"`
	Timeout time.Duration `flag:"shutdown-timeout" usage:"engine shutdown timeout" default:"5s"`
}

func (r resolveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Count, validation.Required, validation.Min(1)),
		validation.Field(&r.Scopes, validation.Required, validation.Min(1)),
		validation.Field(&r.Workers, validation.Required, validation.Min(1), validation.Max(256)),
		validation.Field(&r.Timeout, validation.Required),
	)
}

// resolveReport what a run observed
type resolveReport struct {
	Resolved      int
	Distinct      int
	Constructions int64
	CachedKeys    int
	Caches        int64
	Clocks        int64
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var req resolveRequest

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the request handler through its value scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flagx.ParseFlags(cmd, &req); err != nil {
				return err
			}
			if err := validator.Validate(req); err != nil {
				return err
			}

			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			report, runErr := runResolve(cmd.Context(), engine, req)

			ctx, cancel := context.WithTimeout(context.Background(), req.Timeout)
			defer cancel()
			if err := engine.Metrics().ForceFlush(ctx); err != nil {
				engine.Logger().Warn("metrics flush failed", zap.Error(err))
			}
			if err := engine.Shutdown(ctx); err != nil && runErr == nil {
				runErr = err
			}
			if runErr != nil {
				return runErr
			}

			printReport(cmd, report)
			return nil
		},
	}
	cobra.CheckErr(flagx.BindFlags(cmd, &req))
	return cmd
}

// runResolve resolves the handler Count times per scope on a pool of Workers.
// Each scope is driven to completion before the request id moves on.
func runResolve(ctx context.Context, engine *di.Engine, req resolveRequest) (resolveReport, error) {
	d, err := newDemo(engine.BindingOptions()...)
	if err != nil {
		return resolveReport{}, err
	}
	if err := engine.Add(d.bindings()...); err != nil {
		return resolveReport{}, err
	}
	di.ProvideFromCollection[*Handler](engine.Injector())

	pool, err := ants.NewPool(req.Workers)
	if err != nil {
		return resolveReport{}, err
	}
	defer pool.Release()

	seen := make(map[*Handler]struct{})
	resolved := 0
	for scope := range req.Scopes {
		d.requestID.Store(int64(scope))

		results, err := resolveScope(ctx, engine, pool, req.Count)
		if err != nil {
			engine.Logger().ErrorCtx(ctx, "resolution failed", zap.Int("scope", scope), zap.Error(err))
			return resolveReport{}, err
		}

		for _, h := range results {
			if h.request != int64(scope) {
				return resolveReport{}, fmt.Errorf("handler for request %d resolved in scope %d", h.request, scope)
			}
			seen[h] = struct{}{}
		}
		resolved += len(results)
	}

	engine.Logger().InfoCtx(ctx, "resolve finished",
		zap.Int("resolved", resolved),
		zap.Int("distinct", len(seen)),
		zap.Int64("constructions", d.handlerCalls.Load()),
	)

	return resolveReport{
		Resolved:      resolved,
		Distinct:      len(seen),
		Constructions: d.handlerCalls.Load(),
		CachedKeys:    d.handler.Len(),
		Caches:        d.cacheCalls.Load(),
		Clocks:        d.clockCalls.Load(),
	}, nil
}

// resolveScope resolves the handler count times on the pool and waits for all of them
func resolveScope(ctx context.Context, engine *di.Engine, pool *ants.Pool, count int) ([]*Handler, error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	results := make([]*Handler, count)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for i := range count {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			h, err := do.Invoke[*Handler](engine.Injector())
			if err != nil {
				fail(err)
				return
			}
			results[i] = h
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return results, nil
}

func printReport(cmd *cobra.Command, r resolveReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "resolved:      %d\n", r.Resolved)
	fmt.Fprintf(out, "distinct:      %d\n", r.Distinct)
	fmt.Fprintf(out, "constructions: %d\n", r.Constructions)
	fmt.Fprintf(out, "cached keys:   %d\n", r.CachedKeys)
	fmt.Fprintf(out, "caches:        %d\n", r.Caches)
	fmt.Fprintf(out, "clocks:        %d\n", r.Clocks)
}
