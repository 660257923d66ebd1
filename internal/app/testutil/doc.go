// Package testutil provides shared test doubles for the voicenotes packages.
//
// It contains three groups of helpers:
//
// 1. In-memory record store (memory_store.go):
//   - MemoryStore: a thread-safe repository.RecordStore with per-method
//     error injection and a history of every saved audio record.
//
// 2. Remote service doubles (fake_summary_api.go, mock_services.go):
//   - FakeSummaryAPI: a scripted summary.API that tracks how many
//     pipelines are open at once.
//   - MockSummaryAPI, MockUploader: testify mocks for interaction tests.
//
// 3. Fixtures (fixtures.go):
//   - WriteAudioFile, AudioRecordFixture, NoteFixture.
//
// # Usage
//
//	store := testutil.NewMemoryStore()
//	api := testutil.NewFakeSummaryAPI()
//	api.PollsUntilComplete = 2
//
//	rec := testutil.AudioRecordFixture(t, store, noteID, "memo")
//	...
//	assert.Equal(t, model.SummaryCompleted, store.MustGet(t, rec.ID).SummaryStatus)
//
// # Thread Safety
//
// MemoryStore and FakeSummaryAPI guard their state with a mutex and can be
// shared between the orchestrator worker and the test goroutine.
package testutil
