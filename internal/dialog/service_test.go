package dialog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	users    map[int64]UserInfo
	dialogs  map[string][]Exchange
	attrs    map[int64]map[string]string
	failWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:   make(map[int64]UserInfo),
		dialogs: make(map[string][]Exchange),
		attrs:   make(map[int64]map[string]string),
	}
}

func (f *fakeRepo) CreateUserIfNotExists(_ context.Context, u UserInfo) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.users[u.TelegramID]; !ok {
		f.users[u.TelegramID] = u
	}
	return nil
}

func (f *fakeRepo) ListUsers(_ context.Context) ([]UserInfo, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []UserInfo
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeRepo) InsertDialog(_ context.Context, _ int64, dialogID string, _ time.Time) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.dialogs[dialogID] = []Exchange{}
	return nil
}

func (f *fakeRepo) GetDialogMessages(_ context.Context, dialogID string) ([]Exchange, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.dialogs[dialogID], nil
}

func (f *fakeRepo) SetDialogMessages(_ context.Context, dialogID string, msgs []Exchange) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.dialogs[dialogID] = msgs
	return nil
}

func (f *fakeRepo) GetAttribute(_ context.Context, telegramID int64, name string) (string, bool, error) {
	if f.failWith != nil {
		return "", false, f.failWith
	}
	v, ok := f.attrs[telegramID][name]
	return v, ok, nil
}

func (f *fakeRepo) SetAttribute(_ context.Context, telegramID int64, name, value string) error {
	if f.failWith != nil {
		return f.failWith
	}
	if f.attrs[telegramID] == nil {
		f.attrs[telegramID] = make(map[string]string)
	}
	f.attrs[telegramID][name] = value
	return nil
}

var testDefaults = Defaults{Model: "gpt-3.5-turbo", ChatMode: "assistant"}

func TestAttributeDefaults(t *testing.T) {
	store := NewStore(newFakeRepo(), testDefaults)

	model, err := store.GetAttribute(context.Background(), 1, AttrCurrentModel)
	require.NoError(t, err)
	require.Equal(t, "gpt-3.5-turbo", model)

	mode, err := store.GetAttribute(context.Background(), 1, AttrCurrentChatMode)
	require.NoError(t, err)
	require.Equal(t, "assistant", mode)
}

func TestSetAttributeOverridesDefault(t *testing.T) {
	store := NewStore(newFakeRepo(), testDefaults)

	require.NoError(t, store.SetAttribute(context.Background(), 1, AttrCurrentModel, "gpt-4o"))

	model, err := store.GetAttribute(context.Background(), 1, AttrCurrentModel)
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", model)
}

func TestStartNewDialogIsEmpty(t *testing.T) {
	store := NewStore(newFakeRepo(), testDefaults)

	_, err := store.StartNewDialog(context.Background(), 1)
	require.NoError(t, err)

	msgs, err := store.GetActiveMessages(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestNewDialogSwitchesActivePointer(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, testDefaults)

	first, err := store.StartNewDialog(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, store.ReplaceActiveMessages(context.Background(), 1,
		[]Exchange{{UserText: "старый", BotText: "ответ", Date: time.Now()}}))

	second, err := store.StartNewDialog(context.Background(), 1)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// новый диалог пуст, старый не удалён
	msgs, err := store.GetActiveMessages(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, msgs)
	require.Len(t, repo.dialogs[first], 1)
}

func TestGetActiveMessagesStartsDialogLazily(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, testDefaults)

	msgs, err := store.GetActiveMessages(context.Background(), 7)
	require.NoError(t, err)
	require.Empty(t, msgs)
	require.Len(t, repo.dialogs, 1)
}

func TestReplaceActiveMessagesRoundTrip(t *testing.T) {
	store := NewStore(newFakeRepo(), testDefaults)

	url := "https://s3.example/x.jpg"
	in := []Exchange{
		{UserText: "раз", BotText: "один", Date: time.Now()},
		{UserText: "два", ImageURL: &url, BotText: "второй", Date: time.Now()},
	}
	require.NoError(t, store.ReplaceActiveMessages(context.Background(), 1, in))

	out, err := store.GetActiveMessages(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestStorageErrorsWrapped(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("connection refused")
	store := NewStore(repo, testDefaults)

	_, err := store.GetActiveMessages(context.Background(), 1)
	require.ErrorIs(t, err, ErrStorage)

	_, err = store.GetAttribute(context.Background(), 1, AttrCurrentModel)
	require.ErrorIs(t, err, ErrStorage)

	err = store.RegisterUserIfNotExists(context.Background(), UserInfo{TelegramID: 1})
	require.ErrorIs(t, err, ErrStorage)
}
