// Package events publishes proposal lifecycle events to NATS so downstream
// integrations (CRM sync, e-signature, email delivery) can pick up finished
// documents without coupling to the generation pipeline.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360studio/dealdesk/proposal"
)

// SubjectProposalGenerated is the subject finished proposals are announced on.
const SubjectProposalGenerated = "dealdesk.proposal.generated"

// GeneratedEvent is the hand-off message for a finished proposal. It carries
// identifiers and outcome metadata, not the full document; subscribers fetch
// what they need.
type GeneratedEvent struct {
	ProposalID      string    `json:"proposal_id"`
	CompanyName     string    `json:"company_name"`
	RecommendedTier string    `json:"recommended_tier"`
	FallbackUsed    bool      `json:"fallback_used"`
	GeneratedAt     time.Time `json:"generated_at"`
	PDFURL          string    `json:"pdf_url"`
}

// Publisher publishes proposal events. A nil Publisher or one created
// without a connection is a no-op, so event delivery never becomes a
// precondition for serving proposals.
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewPublisher creates a Publisher over an existing NATS connection.
// nc may be nil when no NATS URL is configured.
func NewPublisher(nc *nats.Conn, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{nc: nc, logger: logger}
}

// PublishGenerated announces a finished proposal. Failures are logged and
// swallowed; the proposal response has already been determined.
func (p *Publisher) PublishGenerated(prop *proposal.Proposal) error {
	if p == nil || p.nc == nil {
		return nil
	}

	event := GeneratedEvent{
		ProposalID:      prop.ProposalID,
		CompanyName:     prop.CompanyName,
		RecommendedTier: prop.RecommendedTier,
		FallbackUsed:    prop.Metadata.FallbackUsed,
		GeneratedAt:     prop.Metadata.GeneratedAt,
		PDFURL:          prop.PDFURL,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal proposal event: %w", err)
	}

	if err := p.nc.Publish(SubjectProposalGenerated, data); err != nil {
		p.logger.Warn("Failed to publish proposal event",
			"proposal_id", prop.ProposalID,
			"subject", SubjectProposalGenerated,
			"error", err)
		return fmt.Errorf("publish proposal event: %w", err)
	}

	return nil
}
