package document

import (
	"testing"

	"github.com/viant/bintly"
)

func TestAccepted_EncodeDecodeBinary(t *testing.T) {
	original := &Accepted{
		Scored: Scored{
			Candidate: Candidate{
				DocumentID: "el_universo/1997-03-02/pagina_04.md",
				Seq:        3,
				Start:      1200,
				End:        1718,
				Text:       "La banca cerró el ejercicio con resultados mixtos.",
			},
			Score: 0.8125,
			Signals: Signals{
				LengthAdequacy: 1,
				NoiseRatio:     0.02,
				Coherence:      0.75,
				Vocabulary:     0.96,
			},
		},
		ChunkID: ChunkID("el_universo/1997-03-02/pagina_04.md", 3),
		Ordinal: 42,
		Tokens:  117,
	}

	writers := bintly.NewWriters()
	writer := writers.Get()
	defer writers.Put(writer)

	if err := original.EncodeBinary(writer); err != nil {
		t.Fatalf("EncodeBinary failed: %v", err)
	}

	readers := bintly.NewReaders()
	reader := readers.Get()
	_ = reader.FromBytes(writer.Bytes())
	defer readers.Put(reader)

	decoded := &Accepted{}
	if err := decoded.DecodeBinary(reader); err != nil {
		t.Fatalf("DecodeBinary failed: %v", err)
	}
	if *decoded != *original {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestChunkID(t *testing.T) {
	if got := ChunkID("doc.md", 0); got != "doc.md#0" {
		t.Fatalf("unexpected chunk id %q", got)
	}
	if ChunkID("doc.md", 1) == ChunkID("doc.md", 2) {
		t.Fatal("ids must differ per sequence index")
	}
}
