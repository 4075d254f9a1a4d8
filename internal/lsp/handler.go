package lsp

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"go.lsp.dev/jsonrpc2"
	lsp "go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/woxQAQ/template-css-lsp/internal/telemetry"
	"github.com/woxQAQ/template-css-lsp/internal/template"
	"github.com/woxQAQ/template-css-lsp/pkg/protocol"
)

// JSON-RPC methods served to the host.
const (
	MethodInitialize         = "initialize"
	MethodCompletion         = "template/completion"
	MethodFragmentCompletion = "template/fragmentCompletion"
	MethodShutdown           = "shutdown"
	MethodExit               = "exit"
)

// InitializeResult describes the server to the host.
type InitializeResult struct {
	ServerInfo lsp.ServerInfo `json:"serverInfo"`
	Tags       []string       `json:"tags"`
	Language   string         `json:"language"`
}

// CompletionParams asks for completions in a host document. Position is in
// host coordinates.
type CompletionParams struct {
	Text     string            `json:"text"`
	Position protocol.Position `json:"position"`
}

// FragmentCompletionParams asks for completions in one template literal.
// Text includes the backticks; Position is relative to the literal's content.
type FragmentCompletionParams struct {
	Text     string       `json:"text"`
	Position lsp.Position `json:"position"`
}

// session is the per-connection state.
type session struct {
	conn     jsonrpc2.Conn
	shutdown atomic.Bool
	exited   atomic.Bool
}

func (s *Server) handler(sess *session) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		if sess.shutdown.Load() && req.Method() != MethodExit {
			return reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.InvalidRequest, "server is shutting down"))
		}

		switch req.Method() {
		case MethodInitialize:
			return reply(ctx, InitializeResult{
				ServerInfo: lsp.ServerInfo{Name: Name, Version: Version},
				Tags:       s.locator.Tags(),
				Language:   s.cfg.Language,
			}, nil)

		case MethodCompletion:
			var params CompletionParams
			if err := decodeParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			info, err := s.completion(ctx, params)
			return reply(ctx, info, err)

		case MethodFragmentCompletion:
			var params FragmentCompletionParams
			if err := decodeParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			info, err := s.fragmentCompletion(ctx, params)
			return reply(ctx, info, err)

		case MethodShutdown:
			sess.shutdown.Store(true)
			return reply(ctx, nil, nil)

		case MethodExit:
			sess.exited.Store(true)
			return sess.conn.Close()

		default:
			return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
		}
	}
}

func decodeParams(req jsonrpc2.Request, v any) error {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return jsonrpc2.Errorf(jsonrpc2.InvalidParams, "invalid %s params: %v", req.Method(), err)
	}
	return nil
}

// completion locates the tagged literal under the host cursor and completes
// inside it. A cursor outside every tagged literal yields no entries.
func (s *Server) completion(ctx context.Context, params CompletionParams) (*protocol.CompletionInfo, error) {
	if params.Position.Line < 0 || params.Position.Character < 0 {
		return nil, jsonrpc2.Errorf(jsonrpc2.InvalidParams, "negative position %d:%d",
			params.Position.Line, params.Position.Character)
	}

	h, ctx := s.telemetry.Completions().Start(ctx, MethodCompletion)

	offset := template.NewLineIndex(params.Text).ToOffset(lsp.Position{
		Line:      uint32(params.Position.Line),
		Character: uint32(params.Position.Character),
	})

	fragment, ok, err := s.locator.FragmentAt(params.Text, offset)
	if err != nil {
		s.telemetry.Completions().Finish(h, telemetry.OutcomeError, 0, err)
		return nil, jsonrpc2.NewError(jsonrpc2.InternalError, err.Error())
	}
	if !ok {
		s.telemetry.Completions().Finish(h, telemetry.OutcomeNotFound, 0, nil)
		return protocol.EmptyCompletionInfo(), nil
	}

	s.logger.Debug("Fragment located",
		zap.String("tag", fragment.Tag),
		zap.Int("start", fragment.Start),
		zap.Int("end", fragment.End),
	)

	return s.complete(ctx, h, fragment, fragment.PositionAtHostOffset(offset))
}

func (s *Server) fragmentCompletion(ctx context.Context, params FragmentCompletionParams) (*protocol.CompletionInfo, error) {
	h, ctx := s.telemetry.Completions().Start(ctx, MethodFragmentCompletion)
	return s.complete(ctx, h, template.NewFragment(params.Text), params.Position)
}

func (s *Server) complete(ctx context.Context, h *telemetry.RequestHandle, fragment template.Context, pos lsp.Position) (*protocol.CompletionInfo, error) {
	info, err := s.service.GetCompletionsAtPosition(ctx, fragment, pos)
	if err != nil {
		s.telemetry.Completions().Finish(h, telemetry.OutcomeError, 0, err)
		s.logger.Warn("Completion failed", zap.Error(err))
		return nil, jsonrpc2.NewError(jsonrpc2.InternalError, err.Error())
	}

	s.telemetry.Completions().Finish(h, telemetry.OutcomeOK, len(info.Entries), nil)
	return info, nil
}
