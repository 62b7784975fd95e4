package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"sdsscraper/pkg/logger"
)

// Status is the outcome of a single download job
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// DownloadJob represents a single document to fetch
type DownloadJob struct {
	URL      string
	Filename string
}

// DownloadResult represents the result of a download job
type DownloadResult struct {
	Job      DownloadJob
	Status   Status
	Error    error
	Duration time.Duration
	Size     int
}

// DocumentDownloader fetches the body of a document URL
type DocumentDownloader interface {
	DownloadDocument(ctx context.Context, url string) ([]byte, error)
}

// DocumentStorage stores documents by filename
type DocumentStorage interface {
	Exists(filename string) bool
	Save(r io.Reader, filename string) error
}

// WorkerPool manages concurrent download workers
type WorkerPool struct {
	numWorkers     int
	jobQueue       chan DownloadJob
	resultQueue    chan DownloadResult
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
	client         DocumentDownloader
	storageManager DocumentStorage
	logger         logger.Logger
	stopOnce       sync.Once
}

// NewWorkerPool creates a new download worker pool. Cancelling ctx stops
// workers from picking up further jobs; a download already in flight runs
// to completion and its result is still delivered.
func NewWorkerPool(
	ctx context.Context,
	numWorkers int,
	client DocumentDownloader,
	storageManager DocumentStorage,
	log logger.Logger,
) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers:     numWorkers,
		jobQueue:       make(chan DownloadJob, numWorkers*2),
		resultQueue:    make(chan DownloadResult, numWorkers),
		ctx:            ctx,
		cancel:         cancel,
		client:         client,
		storageManager: storageManager,
		logger:         log,
	}
}

// Start launches all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue and waits for queued jobs to drain.
// Results is closed once every worker has exited. Safe to call more than once.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		wp.logger.Debug("Stopping worker pool...")

		close(wp.jobQueue)
		wp.wg.Wait()
		close(wp.resultQueue)
		wp.cancel()

		wp.logger.Debug("Worker pool stopped")
	})
}

// Submit adds a job to the queue, blocking while the queue is full
func (wp *WorkerPool) Submit(job DownloadJob) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"filename": job.Filename,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the result channel for consuming download results
func (wp *WorkerPool) Results() <-chan DownloadResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		default:
		}

		wp.resultQueue <- wp.processJob(job, id)
	}
}

// processJob downloads one document unless its file is already on disk
func (wp *WorkerPool) processJob(job DownloadJob, workerID int) DownloadResult {
	start := time.Now()
	result := DownloadResult{Job: job}

	log := wp.logger.WithFields(map[string]interface{}{
		"worker_id": workerID,
		"filename":  job.Filename,
	})

	if wp.storageManager.Exists(job.Filename) {
		result.Status = StatusSkipped
		result.Duration = time.Since(start)
		logger.LogDownload(log, job.URL, job.Filename, string(result.Status), nil)
		return result
	}

	data, err := wp.client.DownloadDocument(context.WithoutCancel(wp.ctx), job.URL)
	if err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)
		logger.LogDownload(log, job.URL, job.Filename, string(result.Status), err)
		return result
	}

	result.Size = len(data)

	if err := wp.storageManager.Save(bytes.NewReader(data), job.Filename); err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)
		logger.LogDownload(log, job.URL, job.Filename, string(result.Status), err)
		return result
	}

	result.Status = StatusDownloaded
	result.Duration = time.Since(start)
	log.DebugWithFields("Document saved", map[string]interface{}{
		"size":     result.Size,
		"duration": result.Duration,
	})
	logger.LogDownload(log, job.URL, job.Filename, string(result.Status), nil)

	return result
}
