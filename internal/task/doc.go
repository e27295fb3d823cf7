// Package task provides background task processing: a persistent task
// queue with worker goroutines, crash recovery and stuck-task detection.
// Its main workload is generating study content for subtopics ahead of
// their appearance in daily feeds.
package task
