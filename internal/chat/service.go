// Package chat orchestrates a full conversation turn: session bookkeeping,
// contact and signal extraction, evidence retrieval, grounded generation,
// and assembly of the enriched turn result.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/albadia/villachat/internal/catalog"
	"github.com/albadia/villachat/internal/composer"
	"github.com/albadia/villachat/internal/lead"
	"github.com/albadia/villachat/internal/reranking"
	"github.com/albadia/villachat/internal/retrieval"
	"github.com/albadia/villachat/internal/session"
)

// ErrInvalidRequest marks request validation failures. Handlers map it to a
// client error status.
var ErrInvalidRequest = errors.New("invalid chat request")

// fallbackReply is returned verbatim when generation fails. The turn still
// completes: session state, citations, and lead signals are all produced.
const fallbackReply = "I apologize, but I'm having trouble processing your request right now. Please try again or contact our sales team for immediate assistance."

// maxImages bounds how many ranked floorplan images a turn may return.
const maxImages = 3

// visualKeywords gate image inclusion: a turn returns images only when the
// query hints at wanting visuals, or when the reply names concrete villa
// types.
var visualKeywords = []string{
	"floor plan", "floorplan", "layout", "show", "see", "look",
	"design", "image", "picture", "visual", "configuration",
	"how does", "what does", "ground floor", "first floor",
}

// Generator produces the conversational reply from the composed prompts.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Request is one inbound chat turn.
type Request struct {
	Message   string         `json:"message"`
	SessionID string         `json:"session_id"`
	Context   map[string]any `json:"context,omitempty"`
}

// Validate checks the request invariants. All failures wrap
// ErrInvalidRequest.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidRequest)
	}
	if r.SessionID == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidRequest)
	}
	return nil
}

// Image is a floorplan image reference included in a turn result.
type Image struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	Page        int    `json:"page,omitempty"`
}

// Result is the complete enriched turn response.
type Result struct {
	Response            string               `json:"response"`
	SessionID           string               `json:"session_id"`
	PropertiesMentioned []string             `json:"properties_mentioned"`
	Citations           []retrieval.Citation `json:"citations"`
	Images              []Image              `json:"images"`
	LeadSignals         lead.Signals         `json:"lead_signals"`
	FollowUpPrompt      string               `json:"follow_up_prompt"`

	// Fallback reports that Response is the canned reply because generation
	// failed. Not part of the wire format; callers use it for accounting.
	Fallback bool `json:"-"`
}

// Service wires the turn pipeline together.
type Service struct {
	retriever  *retrieval.Retriever
	generator  Generator
	sessions   session.Store
	thresholds lead.Thresholds
}

func NewService(retriever *retrieval.Retriever, generator Generator, sessions session.Store, thresholds lead.Thresholds) *Service {
	return &Service{
		retriever:  retriever,
		generator:  generator,
		sessions:   sessions,
		thresholds: thresholds,
	}
}

// ProcessMessage runs one conversation turn. Update order is fixed: the user
// message is appended and contact info merged before signal detection;
// scoring uses the full cumulative signal set; retrieval failure aborts the
// turn before generation; generation failure degrades to the fallback reply
// but the turn still completes and is recorded.
func (s *Service) ProcessMessage(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slog.Info("processing chat message", "session_id", req.SessionID)

	s.sessions.AppendMessage(req.SessionID, "user", req.Message)

	if contact := lead.ExtractContactInfo(req.Message); len(contact) > 0 {
		s.sessions.MergeLeadInfo(req.SessionID, contact)
		slog.Info("captured contact info", "session_id", req.SessionID, "fields", contactFields(contact))
	}

	history := s.sessions.History(req.SessionID)
	priorContents := make([]string, 0, len(history)-1)
	for _, m := range history[:len(history)-1] {
		priorContents = append(priorContents, m.Content)
	}

	for _, sig := range lead.DetectSignals(req.Message, priorContents) {
		s.sessions.AddSignal(req.SessionID, sig)
	}

	sess := s.sessions.GetOrCreate(req.SessionID)
	allSignals := sess.BuyingSignals
	snapshot := lead.Snapshot(allSignals, len(history), s.thresholds)

	textHits, imageHits, err := s.retriever.RetrieveContext(ctx, req.Message)
	if err != nil {
		return nil, err
	}
	contextBlock := retrieval.FormatContext(textHits)

	userPrompt := composer.UserPrompt(req.Message, contextBlock, history[:len(history)-1], sess.LeadInfo, allSignals)
	reply, err := s.generator.Generate(ctx, composer.SystemPrompt(), userPrompt)
	usedFallback := err != nil
	if usedFallback {
		slog.Error("generation failed, using fallback reply", "session_id", req.SessionID, "error", err)
		reply = fallbackReply
	}

	s.sessions.AppendMessage(req.SessionID, "assistant", reply)

	mentioned := catalog.MentionedIn(reply)
	for _, id := range mentioned {
		s.sessions.AddPropertyViewed(req.SessionID, id)
	}

	citations := retrieval.ExtractCitations(textHits)

	var images []Image
	if (wantsVisuals(req.Message) || len(mentioned) > 0) && len(imageHits) > 0 {
		ranked := reranking.RankImages(imageHits, req.Message, textHits)
		if len(ranked) > maxImages {
			ranked = ranked[:maxImages]
		}
		images = make([]Image, len(ranked))
		for i, img := range ranked {
			images[i] = Image{
				ID:          img.ID,
				Path:        img.Path,
				Filename:    img.Filename,
				Description: img.Description,
				Page:        img.Page,
			}
		}
	}

	followUp := composer.FollowUp(snapshot.Intent, allSignals, sess.LeadInfo)

	slog.Info("turn complete",
		"session_id", req.SessionID,
		"reply_chars", len(reply),
		"properties", len(mentioned),
		"images", len(images),
		"intent", snapshot.Intent)

	return &Result{
		Response:            reply,
		SessionID:           req.SessionID,
		PropertiesMentioned: mentioned,
		Citations:           citations,
		Images:              images,
		LeadSignals:         snapshot,
		FollowUpPrompt:      followUp,
		Fallback:            usedFallback,
	}, nil
}

func wantsVisuals(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range visualKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func contactFields(info map[string]string) []string {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	return keys
}
