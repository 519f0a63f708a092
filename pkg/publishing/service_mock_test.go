package publishing_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/wepublish/wepublish-api/internal/testutil"
	"github.com/wepublish/wepublish-api/pkg/publishing"
	"github.com/wepublish/wepublish-api/pkg/publishing/mocks"
	"github.com/wepublish/wepublish-api/pkg/publishing/repo/memory"
)

type SinkTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	repo  *mocks.MockRepository
	first *mocks.MockEventSink
	last  *mocks.MockEventSink
	clock *mocks.MockClock
	now   time.Time

	logger *slog.Logger
}

func (s *SinkTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.repo = mocks.NewMockRepository(s.ctrl)
	s.first = mocks.NewMockEventSink(s.ctrl)
	s.last = mocks.NewMockEventSink(s.ctrl)
	s.clock = mocks.NewMockClock(s.ctrl)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()

	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *SinkTestSuite) newService(repo publishing.Repository) publishing.Service {
	svc, err := publishing.New(
		publishing.WithRepository(repo),
		publishing.WithEventSink(s.first),
		publishing.WithEventSink(s.last),
		publishing.WithClock(s.clock),
		publishing.WithLogger(s.logger),
	)
	s.Require().NoError(err)
	return svc
}

func (s *SinkTestSuite) runInline() {
	s.repo.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
}

func (s *SinkTestSuite) TestCreate_TransactionFailureSkipsSinks() {
	dbErr := errors.New("connection reset")
	s.repo.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).Return(dbErr)

	svc := s.newService(s.repo)
	item, err := svc.Create(context.Background(), testutil.AdminSession(), publishing.CreateRequest{
		RevisionInput: testutil.Draft("Title", "title"),
	})

	s.Nil(item)
	s.ErrorIs(err, dbErr)
	var itemErr *publishing.ItemError
	s.Require().ErrorAs(err, &itemErr)
	s.Equal("create", itemErr.Op)
}

func (s *SinkTestSuite) TestUpdate_RevisionWriteFailureSkipsSinks() {
	s.runInline()
	id := uuid.New()
	existing := &publishing.Item{ID: id, Kind: publishing.KindArticle, CreatedAt: s.now}
	existing.SetRevision(&publishing.Revision{ID: uuid.New(), ItemID: id, State: publishing.StateDraft, Title: "Old"})

	writeErr := errors.New("disk full")
	s.repo.EXPECT().GetItem(gomock.Any(), id).Return(existing, nil)
	s.repo.EXPECT().UpdateItem(gomock.Any(), gomock.Any()).Return(nil)
	s.repo.EXPECT().PutRevision(gomock.Any(), gomock.Any()).Return(writeErr)

	svc := s.newService(s.repo)
	_, err := svc.Update(context.Background(), testutil.AdminSession(), id, publishing.UpdateRequest{
		RevisionInput: testutil.Draft("New", "new"),
	})
	s.ErrorIs(err, writeErr)
}

func (s *SinkTestSuite) TestUpdate_StampsModifiedAt() {
	s.runInline()
	id := uuid.New()
	existing := &publishing.Item{ID: id, Kind: publishing.KindArticle, CreatedAt: s.now.Add(-time.Hour)}

	s.repo.EXPECT().GetItem(gomock.Any(), id).Return(existing, nil)
	s.repo.EXPECT().UpdateItem(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, item *publishing.Item) error {
			s.Equal(s.now, item.ModifiedAt)
			s.True(item.Shared)
			return nil
		})
	s.repo.EXPECT().PutRevision(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rev *publishing.Revision) error {
			s.Equal(publishing.StateDraft, rev.State)
			s.Equal("Fresh", rev.Title)
			return nil
		})
	s.first.EXPECT().ItemUpdated(gomock.Any(), gomock.Any()).Return(nil)
	s.last.EXPECT().ItemUpdated(gomock.Any(), gomock.Any()).Return(nil)

	svc := s.newService(s.repo)
	item, err := svc.Update(context.Background(), testutil.AdminSession(), id, publishing.UpdateRequest{
		Shared:        true,
		RevisionInput: testutil.Draft("Fresh", "fresh"),
	})
	s.Require().NoError(err)
	s.Equal("Fresh", item.Draft().Title)
}

func (s *SinkTestSuite) TestSinksNotifiedInOrder() {
	svc := s.newService(memory.New())

	gomock.InOrder(
		s.first.EXPECT().ItemCreated(gomock.Any(), gomock.Any()).Return(nil),
		s.last.EXPECT().ItemCreated(gomock.Any(), gomock.Any()).Return(nil),
	)

	_, err := svc.Create(context.Background(), testutil.AdminSession(), publishing.CreateRequest{
		RevisionInput: testutil.Draft("Ordered", "ordered"),
	})
	s.NoError(err)
}

func (s *SinkTestSuite) TestSinkFailureDoesNotFailOperation() {
	svc := s.newService(memory.New())
	ctx := context.Background()
	admin := testutil.AdminSession()

	s.first.EXPECT().ItemCreated(gomock.Any(), gomock.Any()).Return(nil)
	s.last.EXPECT().ItemCreated(gomock.Any(), gomock.Any()).Return(nil)
	item, err := svc.Create(ctx, admin, publishing.CreateRequest{RevisionInput: testutil.Draft("Live", "live")})
	s.Require().NoError(err)

	s.first.EXPECT().ItemPublished(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
	s.last.EXPECT().ItemPublished(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, published *publishing.Item) error {
			s.Equal(item.ID, published.ID)
			s.NotNil(published.Published())
			return nil
		})

	published, err := svc.Publish(ctx, admin, item.ID, publishing.PublishRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(published.Published())
	s.Equal(s.now, *published.Published().PublishedAt)
}

func TestSinkTestSuite(t *testing.T) {
	suite.Run(t, new(SinkTestSuite))
}
