package tokenizer

import (
	"errors"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// PieceType mirrors sentencepiece.ModelProto.SentencePiece.Type.
type PieceType int32

// Piece types defined by sentencepiece_model.proto.
const (
	PieceNormal      PieceType = 1
	PieceUnknown     PieceType = 2
	PieceControl     PieceType = 3
	PieceUserDefined PieceType = 4
	PieceUnused      PieceType = 5
	PieceByte        PieceType = 6
)

// Field numbers from sentencepiece_model.proto.
const (
	fieldModelPieces protowire.Number = 1
	fieldPieceText   protowire.Number = 1
	fieldPieceScore  protowire.Number = 2
	fieldPieceType   protowire.Number = 3
)

// ErrNoPieces indicates the model file decoded but holds no vocabulary.
var ErrNoPieces = errors.New("tokenizer: model has no pieces")

// Piece represents a vocabulary piece from the model.
type Piece struct {
	Piece string
	Score float32
	Type  PieceType
}

// Model represents a loaded SentencePiece model. Only the vocabulary is
// decoded; trainer and normalizer specs are skipped.
type Model struct {
	Pieces []Piece
}

// LoadModel loads a SentencePiece model from a .model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	model, err := parseModel(data)
	if err != nil {
		return nil, fmt.Errorf("parsing protobuf: %w", err)
	}
	return model, nil
}

func parseModel(data []byte) (*Model, error) {
	var model Model

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		if num == fieldModelPieces && typ == protowire.BytesType {
			b, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			piece, err := parsePiece(b)
			if err != nil {
				return nil, fmt.Errorf("piece %d: %w", len(model.Pieces), err)
			}
			model.Pieces = append(model.Pieces, piece)
			data = data[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
	}

	if len(model.Pieces) == 0 {
		return nil, ErrNoPieces
	}
	return &model, nil
}

func parsePiece(data []byte) (Piece, error) {
	p := Piece{Type: PieceNormal}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Piece{}, protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldPieceText && typ == protowire.BytesType:
			b, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return Piece{}, protowire.ParseError(n)
			}
			p.Piece = string(b)
			data = data[n:]

		case num == fieldPieceScore && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return Piece{}, protowire.ParseError(n)
			}
			p.Score = math.Float32frombits(v)
			data = data[n:]

		case num == fieldPieceType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Piece{}, protowire.ParseError(n)
			}
			p.Type = PieceType(v)
			data = data[n:]

		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Piece{}, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}

	return p, nil
}

// Vocabulary maps pieces to their model IDs.
type Vocabulary struct {
	ids map[string]int64
}

// NewVocabulary indexes model pieces by position.
func NewVocabulary(m *Model) *Vocabulary {
	v := &Vocabulary{ids: make(map[string]int64, len(m.Pieces))}
	for i, p := range m.Pieces {
		if _, dup := v.ids[p.Piece]; !dup {
			v.ids[p.Piece] = int64(i)
		}
	}
	return v
}

// ID returns the ID of piece.
func (v *Vocabulary) ID(piece string) (int64, bool) {
	id, ok := v.ids[piece]
	return id, ok
}

// Size returns the number of distinct pieces.
func (v *Vocabulary) Size() int {
	return len(v.ids)
}
