package events_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/miminchandrank/Csv-data-analyst/src/core/chat"
	"github.com/miminchandrank/Csv-data-analyst/src/core/profile"
	"github.com/miminchandrank/Csv-data-analyst/src/infrastructure/events"
	"github.com/miminchandrank/Csv-data-analyst/src/storage/postgres/chatctrl"
)

func TestEventsAreRecorded(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "events.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	history, err := chatctrl.NewChatService(db)
	require.NoError(t, err)
	require.NoError(t, history.Migrate(context.Background()))

	wmLogger := events.NewLogger(logr.Discard())
	pubsub := events.NewInProcess(wmLogger)
	router, err := events.NewRouter(pubsub, events.NewRecorder(history, wmLogger), wmLogger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = router.Run(ctx)
	}()
	<-router.Running()

	publisher := events.NewPublisher(pubsub)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, publisher.Publish(ctx, chat.TopicMessages, chat.MessageEvent{
		SessionID: "s1",
		Message:   chat.Message{ID: "42", Role: chat.RoleUser, Content: "How many rows?", CreatedAt: now},
	}))
	require.NoError(t, publisher.Publish(ctx, chat.TopicDatasets, chat.DatasetEvent{
		SessionID: "s1",
		DatasetID: "7",
		Filename:  "sales.csv",
		FileKey:   "abc",
		Rows:      3,
		Columns:   2,
		Summary:   &profile.Summary{Metadata: profile.Metadata{Shape: [2]int{3, 2}}},
		LoadedAt:  now,
	}))

	require.Eventually(t, func() bool {
		messages, err := history.ListMessages(ctx, "s1")
		return err == nil && len(messages) == 1
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		ds, err := history.GetDataset(ctx, "7")
		return err == nil && ds != nil
	}, 5*time.Second, 20*time.Millisecond)

	messages, err := history.ListMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "42", messages[0].MessageID)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "How many rows?", messages[0].Content)

	ds, err := history.GetDataset(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", ds.Filename)
	assert.Contains(t, ds.Summary, `"shape":[3,2]`)

	require.NoError(t, router.Close())
}

func TestInProcessDropsUnsubscribedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := events.NewInProcess(events.NewLogger(logr.Discard()))
	publisher := events.NewPublisher(pubsub)
	defer publisher.Close()

	for i := 0; i < 100; i++ {
		require.NoError(t, publisher.Publish(ctx, chat.TopicMessages, chat.MessageEvent{SessionID: "s1"}))
	}

	messages, err := pubsub.Subscribe(ctx, chat.TopicMessages)
	require.NoError(t, err)

	select {
	case msg := <-messages:
		t.Fatalf("late subscriber received event %s published before it subscribed", msg.UUID)
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, publisher.Publish(ctx, chat.TopicMessages, chat.MessageEvent{SessionID: "s2"}))
	select {
	case msg := <-messages:
		assert.Contains(t, string(msg.Payload), `"session_id":"s2"`)
		msg.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber did not receive event published after it subscribed")
	}
}
