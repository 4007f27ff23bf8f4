package router

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granabot/granabot/internal/model"
	"github.com/granabot/granabot/internal/refcache"
)

var testNow = time.Date(2025, time.March, 13, 15, 0, 0, 0, time.UTC)

// memStorage is an in-memory service.Storage for router tests. It mints
// sequential 24 hex char ids and tracks which calls were made.
type memStorage struct {
	records    []model.Record
	nextID     int
	insertErr  error
	findCalls  []model.Filter
	sumCalls   []model.Filter
	delCalls   []model.Filter
	updCalls   []model.Filter
	findOneLog []model.Filter
}

func (s *memStorage) mintID() string {
	s.nextID++
	id := "000000000000000000000000"
	suffix := []byte{
		byte('0' + s.nextID/100%10),
		byte('0' + s.nextID/10%10),
		byte('0' + s.nextID%10),
	}
	return id[:21] + string(suffix)
}

func (s *memStorage) InsertMany(_ context.Context, records []model.Record) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, r := range records {
		if r.ID == "" {
			r.ID = s.mintID()
		}
		s.records = append(s.records, r)
	}
	return nil
}

func (s *memStorage) matches(r model.Record, f model.Filter) bool {
	if f.ID != "" && r.ID != strings.ToLower(f.ID) {
		return false
	}
	if f.ConversationID != "" && r.ConversationID != f.ConversationID {
		return false
	}
	if f.Category != "" && !strings.EqualFold(r.Category, f.Category) {
		return false
	}
	if f.Payer != "" && r.Payer != f.Payer {
		return false
	}
	if f.Period != nil && !f.Period.Contains(r.Timestamp) {
		return false
	}
	return true
}

func (s *memStorage) FindOne(_ context.Context, filter model.Filter) (*model.Record, error) {
	s.findOneLog = append(s.findOneLog, filter)
	for i := range s.records {
		if s.matches(s.records[i], filter) {
			r := s.records[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memStorage) Find(_ context.Context, filter model.Filter, _ model.Sort, limit int) ([]model.Record, error) {
	s.findCalls = append(s.findCalls, filter)
	var out []model.Record
	for _, r := range s.records {
		if s.matches(r, filter) {
			out = append(out, r)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memStorage) UpdateOne(_ context.Context, filter model.Filter, patch model.Patch) (bool, error) {
	s.updCalls = append(s.updCalls, filter)
	for i := range s.records {
		if s.matches(s.records[i], filter) {
			if patch.Category != nil {
				s.records[i].Category = *patch.Category
			}
			if patch.Amount != nil {
				s.records[i].Amount = *patch.Amount
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *memStorage) DeleteOne(_ context.Context, filter model.Filter) (bool, error) {
	s.delCalls = append(s.delCalls, filter)
	for i := range s.records {
		if s.matches(s.records[i], filter) {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memStorage) AggregateSum(_ context.Context, filter model.Filter) (model.Summary, error) {
	s.sumCalls = append(s.sumCalls, filter)
	var summary model.Summary
	for _, r := range s.records {
		if s.matches(r, filter) {
			summary.Count++
			summary.Total += r.Amount
		}
	}
	return summary, nil
}

func (s *memStorage) Migrate(context.Context) error { return nil }
func (s *memStorage) Close() error                  { return nil }

// mockOracle returns a canned classification and counts calls.
type mockOracle struct {
	classification model.Classification
	err            error
	calls          int
}

func (o *mockOracle) Classify(context.Context, string, model.OracleHints) (model.Classification, error) {
	o.calls++
	if o.err != nil {
		return model.Classification{}, o.err
	}
	return o.classification, nil
}

// capture buffers replies.
type capture struct {
	replies []string
}

func (c *capture) Reply(_ context.Context, _ string, text string) error {
	c.replies = append(c.replies, text)
	return nil
}

func newTestRouter(storage *memStorage, oracle *mockOracle) (*Router, *refcache.Cache) {
	cache := refcache.New(refcache.DefaultTTL)
	r := New(storage, oracle, cache, Config{
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
		Payers:   map[string]string{"+5511999": "Ana", "+5511888": "Bruno"},
		PayerAliases: map[string]string{
			"esposa": "Ana",
			"marido": "Bruno",
		},
	}, nil)
	return r, cache
}

func msg(text string) model.Message {
	return model.Message{ConversationID: "conv", Sender: "+5511999", Text: text}
}

func seed(conversationID, id, category string, amount float64, ts time.Time) model.Record {
	return model.Record{
		ID:             id,
		ConversationID: conversationID,
		Timestamp:      ts,
		Amount:         amount,
		Category:       category,
		Payer:          "Ana",
		OriginalText:   "seed",
	}
}

func TestHandleMultiRecordBypassesOracle(t *testing.T) {
	storage := &memStorage{}
	oracle := &mockOracle{}
	r, _ := newTestRouter(storage, oracle)
	out := &capture{}

	r.Handle(context.Background(), msg("paiol 16 e monster 11"), out)

	assert.Zero(t, oracle.calls, "two local extractions are authoritative")
	require.Len(t, storage.records, 2)
	assert.Equal(t, "Paiol/cigarro", storage.records[0].Category)
	assert.InDelta(t, 16, storage.records[0].Amount, 0.0001)
	assert.Equal(t, "Energeticos", storage.records[1].Category)
	assert.Equal(t, "Ana", storage.records[0].Payer, "sender maps to payer")
	assert.Equal(t, testNow, storage.records[0].Timestamp)

	require.Len(t, out.replies, 1)
	assert.Contains(t, out.replies[0], "2 gastos")
	assert.Contains(t, out.replies[0], "27,00")
}

func TestHandleSingleRecordViaOracle(t *testing.T) {
	storage := &memStorage{}
	oracle := &mockOracle{classification: model.Classification{Action: model.ActionRecord}}
	r, _ := newTestRouter(storage, oracle)
	out := &capture{}

	r.Handle(context.Background(), msg("mercado 54,90"), out)

	assert.Equal(t, 1, oracle.calls)
	require.Len(t, storage.records, 1)
	assert.Equal(t, "Mercado", storage.records[0].Category)
	assert.InDelta(t, 54.90, storage.records[0].Amount, 0.0001)
	assert.Equal(t, "mercado 54,90", storage.records[0].OriginalText)

	require.Len(t, out.replies, 1)
	assert.Contains(t, out.replies[0], "Anotado")
	assert.Contains(t, out.replies[0], "54,90")
}

func TestHandleRecordFromOracleFields(t *testing.T) {
	// Local extraction fails; the oracle's own fields fill in.
	storage := &memStorage{}
	oracle := &mockOracle{classification: model.Classification{
		Action:   model.ActionRecord,
		Amount:   30,
		Category: "farmacia",
	}}
	r, _ := newTestRouter(storage, oracle)
	out := &capture{}

	r.Handle(context.Background(), msg("gastei trinta na farmacia agora pouco"), out)

	require.Len(t, storage.records, 1)
	assert.Equal(t, "Farmacia", storage.records[0].Category, "oracle category is normalized before persisting")
	assert.InDelta(t, 30, storage.records[0].Amount, 0.0001)
}

func TestHandleOracleFailureGetsHelp(t *testing.T) {
	storage := &memStorage{}
	oracle := &mockOracle{err: errors.New("timeout")}
	r, _ := newTestRouter(storage, oracle)
	out := &capture{}

	r.Handle(context.Background(), msg("bom dia"), out)

	assert.Equal(t, 1, oracle.calls)
	assert.Empty(t, storage.records, "nothing is written on oracle failure")
	require.Len(t, out.replies, 1)
	assert.Equal(t, replyHelp, out.replies[0])
}

func TestHandleQuerySumsCurrentMonthByDefault(t *testing.T) {
	storage := &memStorage{
		records: []model.Record{
			seed("conv", "000000000000000000000001", "Energeticos", 11, testNow.AddDate(0, 0, -1)),
			seed("conv", "000000000000000000000002", "Energeticos", 9, testNow.AddDate(0, 0, -2)),
			seed("conv", "000000000000000000000003", "Energeticos", 50, testNow.AddDate(0, -2, 0)),
			seed("conv", "000000000000000000000004", "Mercado", 70, testNow),
			seed("other", "000000000000000000000005", "Energeticos", 99, testNow),
		},
	}
	oracle := &mockOracle{classification: model.Classification{Action: model.ActionQuery}}
	r, _ := newTestRouter(storage, oracle)
	out := &capture{}

	r.Handle(context.Background(), msg("quanto gastei com energeticos"), out)

	require.Len(t, storage.sumCalls, 1)
	filter := storage.sumCalls[0]
	assert.Equal(t, "conv", filter.ConversationID)
	assert.Equal(t, "Energeticos", filter.Category)
	require.NotNil(t, filter.Period, "queries never run over all time")
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), filter.Period.Start)

	require.Len(t, out.replies, 1)
	assert.Contains(t, out.replies[0], "2 gastos de Energeticos")
	assert.Contains(t, out.replies[0], "20,00")
}

func TestHandleQueryPayerFilterOnlyWhenExplicit(t *testing.T) {
	storage := &memStorage{}
	oracle := &mockOracle{classification: model.Classification{Action: model.ActionQuery}}
	r, _ := newTestRouter(storage, oracle)

	r.Handle(context.Background(), msg("quanto gastei com mercado"), &capture{})
	require.Len(t, storage.sumCalls, 1)
	assert.Empty(t, storage.sumCalls[0].Payer, "no payer mention, no payer filter")

	r.Handle(context.Background(), msg("quanto a esposa gastou com mercado"), &capture{})
	require.Len(t, storage.sumCalls, 2)
	assert.Equal(t, "Ana", storage.sumCalls[1].Payer, "alias selects the payer")

	r.Handle(context.Background(), msg("quanto foram meus gastos com mercado hoje"), &capture{})
	require.Len(t, storage.sumCalls, 3)
	assert.Equal(t, "Ana", storage.sumCalls[2].Payer, "possessive maps to the sender's payer")
}

func TestHandleQueryTwoPayersEarliestMentionWins(t *testing.T) {
	storage := &memStorage{}
	oracle := &mockOracle{classification: model.Classification{Action: model.ActionQuery}}
	r, _ := newTestRouter(storage, oracle)

	r.Handle(context.Background(), msg("quanto a esposa e o bruno gastaram com mercado"), &capture{})
	require.Len(t, storage.sumCalls, 1)
	assert.Equal(t, "Ana", storage.sumCalls[0].Payer, "the payer mentioned first is the filter")

	r.Handle(context.Background(), msg("quanto o bruno e a esposa gastaram com mercado"), &capture{})
	require.Len(t, storage.sumCalls, 2)
	assert.Equal(t, "Bruno", storage.sumCalls[1].Payer)
}

func TestHandleListPopulatesCacheThenDelete(t *testing.T) {
	storage := &memStorage{
		records: []model.Record{
			seed("conv", "aaaaaaaaaaaaaaaaaa111111", "Mercado", 54.90, testNow.AddDate(0, 0, -1)),
			seed("conv", "bbbbbbbbbbbbbbbbbb222222", "Mercado", 12, testNow.AddDate(0, 0, -3)),
		},
	}
	oracle := &mockOracle{}
	r, _ := newTestRouter(storage, oracle)
	out := &capture{}

	r.Handle(context.Background(), msg("listar gastos mercado"), out)

	assert.Zero(t, oracle.calls, "listing is resolved locally")
	require.NotEmpty(t, out.replies)
	assert.Contains(t, out.replies[0], "#1")
	assert.Contains(t, out.replies[0], "[111111]", "rows carry the short id")

	// The displayed order is now referenceable.
	out = &capture{}
	r.Handle(context.Background(), msg("apagar #2"), out)

	require.Len(t, storage.delCalls, 1)
	assert.Equal(t, "bbbbbbbbbbbbbbbbbb222222", storage.delCalls[0].ID)
	assert.Equal(t, "conv", storage.delCalls[0].ConversationID)
	require.Len(t, out.replies, 1)
	assert.Contains(t, out.replies[0], "Apagado")
}

func TestHandleListWithoutCategoryAsksForOne(t *testing.T) {
	storage := &memStorage{}
	oracle := &mockOracle{}
	r, _ := newTestRouter(storage, oracle)
	out := &capture{}

	r.Handle(context.Background(), msg("listar gastos"), out)

	assert.Zero(t, oracle.calls, "a list request never falls through to the oracle")
	require.Len(t, out.replies, 1)
	assert.Equal(t, replyNeedCategory, out.replies[0])
}

func TestHandleAdminRefWithoutListing(t *testing.T) {
	storage := &memStorage{
		records: []model.Record{
			seed("conv", "aaaaaaaaaaaaaaaaaa111111", "Mercado", 10, testNow),
		},
	}
	oracle := &mockOracle{}
	r, _ := newTestRouter(storage, oracle)
	out := &capture{}

	r.Handle(context.Background(), msg("apagar #1"), out)

	assert.Empty(t, storage.delCalls, "an unresolved reference reaches no storage call")
	assert.Empty(t, storage.findOneLog)
	require.Len(t, out.replies, 1)
	assert.Equal(t, replyRefNotFound, out.replies[0])
	assert.Len(t, storage.records, 1, "nothing was deleted")
}

func TestHandleShortIDScopedToConversation(t *testing.T) {
	storage := &memStorage{
		records: []model.Record{
			seed("other", "aaaaaaaaaaaaaaaaaa111111", "Mercado", 10, testNow),
		},
	}
	oracle := &mockOracle{}
	r, cache := newTestRouter(storage, oracle)
	out := &capture{}

	// The cache holds another conversation's listing only.
	cache.Put("other", []string{"aaaaaaaaaaaaaaaaaa111111"})

	r.Handle(context.Background(), msg("apagar 111111"), out)

	assert.Empty(t, storage.delCalls)
	require.Len(t, out.replies, 1)
	assert.Equal(t, replyRefNotFound, out.replies[0])
}

func TestHandleFullIDCrossConversationFallback(t *testing.T) {
	storage := &memStorage{
		records: []model.Record{
			seed("other", "aaaaaaaaaaaaaaaaaa111111", "Mercado", 10, testNow),
		},
	}
	oracle := &mockOracle{}
	r, _ := newTestRouter(storage, oracle)
	out := &capture{}

	r.Handle(context.Background(), msg("apagar aaaaaaaaaaaaaaaaaa111111"), out)

	// Scoped lookup first, then the unscoped recovery.
	require.Len(t, storage.findOneLog, 2)
	assert.Equal(t, "conv", storage.findOneLog[0].ConversationID)
	assert.Empty(t, storage.findOneLog[1].ConversationID)

	require.Len(t, storage.delCalls, 1)
	assert.Equal(t, "other", storage.delCalls[0].ConversationID, "the delete targets the record's own conversation")
	require.Len(t, out.replies, 1)
	assert.Contains(t, out.replies[0], "Apagado")
}

func TestHandleMoveAndChangeAmount(t *testing.T) {
	storage := &memStorage{
		records: []model.Record{
			seed("conv", "aaaaaaaaaaaaaaaaaa111111", "Diversos", 16, testNow),
		},
	}
	oracle := &mockOracle{}
	r, cache := newTestRouter(storage, oracle)
	cache.Put("conv", []string{"aaaaaaaaaaaaaaaaaa111111"})

	out := &capture{}
	r.Handle(context.Background(), msg("mover #1 para paiol"), out)
	require.Len(t, out.replies, 1)
	assert.Contains(t, out.replies[0], "Movido para Paiol/cigarro")
	assert.Equal(t, "Paiol/cigarro", storage.records[0].Category)

	out = &capture{}
	r.Handle(context.Background(), msg("alterar #1 para 18,50"), out)
	require.Len(t, out.replies, 1)
	assert.Contains(t, out.replies[0], "18,50")
	assert.InDelta(t, 18.5, storage.records[0].Amount, 0.0001)
}

func TestHandleStorageFailureIsContained(t *testing.T) {
	storage := &memStorage{insertErr: errors.New("disk full")}
	oracle := &mockOracle{}
	r, _ := newTestRouter(storage, oracle)
	out := &capture{}

	r.Handle(context.Background(), msg("paiol 16 e monster 11"), out)

	require.Len(t, out.replies, 1)
	assert.Equal(t, replyStorageTrouble, out.replies[0])
}

func TestIsListRequest(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "listar gastos mercado", want: true},
		{input: "mostra os gastos de farmacia", want: true},
		{input: "ver despesas do mes", want: true},
		{input: "quanto gastei com mercado", want: false},
		{input: "mercado 54,90", want: false},
		{input: "alistar gastos", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, isListRequest(tt.input))
		})
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0,00"},
		{in: 8, want: "8,00"},
		{in: 54.9, want: "54,90"},
		{in: 1234.56, want: "1.234,56"},
		{in: 1234567.8, want: "1.234.567,80"},
		{in: -5.5, want: "-5,50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBRL(tt.in))
	}
}

func TestChunkLines(t *testing.T) {
	lines := []string{"aaaa", "bbbb", "cccc"}

	chunks := chunkLines(lines, 9)
	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa\nbbbb", chunks[0])
	assert.Equal(t, "cccc", chunks[1])

	chunks = chunkLines(lines, 100)
	require.Len(t, chunks, 1)

	assert.Empty(t, chunkLines(nil, 10))
}
