// Package parser scans extracted page text for repeating product-entry
// blocks. The per-page scan is an explicit state machine - seeking a code,
// accumulating a description, then collecting notes after the price - driven
// by a per-vendor Config. Parsing is a pure function of the input text plus
// configuration: same bytes, same profile, same result.
package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/entity"
	"github.com/elyasalemi10/bwa-catalog/internal/extract"
)

var imageRefPattern = regexp.MustCompile(`(?i)^(https?://\S+|[\w./\-]+\.(png|jpe?g|gif|webp))$`)

type Parser struct {
	cfg    Config
	codeRe *regexp.Regexp
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Parser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	codeRe, err := regexp.Compile(cfg.CodePattern)
	if err != nil {
		return nil, common.NewAppError("PROFILE_PATTERN", "code pattern does not compile", common.ErrInvalidInput)
	}
	return &Parser{cfg: cfg, codeRe: codeRe, logger: logger}, nil
}

// block accumulates one candidate product entry while the scanner walks
// lines. It is promoted to a record only once evidence (description text or
// a price token) turns up inside the adjacency window.
type block struct {
	code           string
	descWords      []string
	noteWords      []string
	price          *string
	priceSeen      bool
	imageURL       *string
	linesSinceCode int
	evidence       bool
}

// Parse extracts candidate product records from a document.
//
// Duplicate codes keep the position of their first appearance and the
// content of their last occurrence. A block that is still accumulating its
// description at a page break carries over to the next page; a block whose
// price has been seen closes at the break.
func (p *Parser) Parse(doc *extract.Document) *entity.ExtractionResult {
	res := &entity.ExtractionResult{
		PageCount: doc.PageCount,
		Records:   []entity.ExtractedRecord{},
		AllCodes:  []string{},
	}
	codesSeen := make(map[string]struct{})
	recordIdx := make(map[string]int)
	ambiguous := 0

	addCode := func(code string) {
		if _, ok := codesSeen[code]; !ok {
			codesSeen[code] = struct{}{}
			res.AllCodes = append(res.AllCodes, code)
		}
	}

	finalize := func(b *block) {
		if b == nil {
			return
		}
		if !b.evidence {
			ambiguous++
			return
		}
		rec := entity.ExtractedRecord{
			Code:                    b.code,
			ManufacturerDescription: strings.Join(b.descWords, " "),
			Price:                   b.price,
			ImageURL:                b.imageURL,
		}
		if len(b.noteWords) > 0 {
			notes := strings.Join(b.noteWords, " ")
			rec.Notes = &notes
		}
		if idx, ok := recordIdx[b.code]; ok {
			res.Records[idx] = rec
			return
		}
		recordIdx[b.code] = len(res.Records)
		res.Records = append(res.Records, rec)
	}

	var open *block
	for _, page := range doc.Pages {
		for _, line := range strings.Split(page, "\n") {
			tokens := strings.Fields(line)
			if len(tokens) == 0 {
				if open != nil {
					open.linesSinceCode++
				}
				continue
			}

			// Every code-grammar token goes to AllCodes, wherever it sits.
			for _, tok := range tokens {
				if code, ok := p.asCode(tok); ok {
					addCode(code)
				}
			}

			// A code at the start of a line opens a new logical block.
			if code, ok := p.asCode(tokens[0]); ok {
				finalize(open)
				open = &block{code: code}
				p.consume(open, tokens[1:])
				continue
			}

			if open == nil {
				continue
			}
			open.linesSinceCode++
			p.consume(open, tokens)
		}

		// Page boundary: an open description carries over; a block that
		// already reached its price closes here.
		if open != nil && open.priceSeen {
			finalize(open)
			open = nil
		}
	}
	finalize(open)

	p.logger.Debug("parse complete",
		"pages", res.PageCount,
		"records", len(res.Records),
		"codes", len(res.AllCodes),
		"ambiguous", ambiguous,
	)
	return res
}

// consume routes one line's remaining tokens into the open block:
// description words until a price candidate, notes afterwards. Image
// references are captured wherever they appear.
func (p *Parser) consume(b *block, tokens []string) {
	inWindow := b.linesSinceCode <= p.cfg.AdjacencyWindow
	for _, tok := range tokens {
		if b.imageURL == nil && imageRefPattern.MatchString(tok) {
			url := tok
			b.imageURL = &url
			continue
		}
		if !b.priceSeen && isPriceToken(tok, p.cfg.CurrencySymbols) {
			b.priceSeen = true
			if v, ok := NormalizePrice(tok, p.cfg.CurrencySymbols); ok {
				b.price = &v
			}
			if inWindow {
				b.evidence = true
			}
			continue
		}
		if b.priceSeen {
			b.noteWords = append(b.noteWords, tok)
			continue
		}
		b.descWords = append(b.descWords, tok)
		if inWindow && len(b.descWords) >= p.cfg.MinDescriptionWords {
			b.evidence = true
		}
	}
}

// asCode normalizes a token (surrounding punctuation trimmed, uppercased)
// and reports whether it conforms to the vendor code grammar.
func (p *Parser) asCode(tok string) (string, bool) {
	tok = strings.Trim(tok, ".,:;()[]{}")
	if len(tok) < minCodeLen || len(tok) > maxCodeLen {
		return "", false
	}
	tok = strings.ToUpper(tok)
	if !p.codeRe.MatchString(tok) {
		return "", false
	}
	return tok, true
}
