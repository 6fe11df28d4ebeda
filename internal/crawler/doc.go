// Package crawler implements the bounded, concurrent traversal engine.
//
// # Architecture
//
// A crawl is a forest of Tasks, one root per seed URL. Each Task checks its
// preconditions, claims its URL in the shared visited set, asks a
// parser.PageParser for the page's words and links, merges the words into the
// shared counts and then forks one child Task per link with one less unit of
// remaining depth. A Task returns only after all of its children have
// returned, so the Coordinator's wait on the roots is a barrier for the whole
// forest.
//
// Design decision: Tasks run as goroutines bounded by a weighted semaphore
// rather than as items on a work queue because:
//  1. Recursion keeps the depth bookkeeping in the Task itself
//  2. errgroup gives structured joins with no extra queue state
//  3. A Task gives its slot back before it waits on its children, so the
//     pool can never deadlock on parents waiting for their own descendants
//
// # Components
//
//   - Coordinator: validates a Request and runs one crawl to completion
//   - Task: the recursive unit of work
//   - State: the visited set and word counts shared by one crawl
//   - Pool: the bound on concurrently running Tasks
//
// # Usage
//
//	c := crawler.NewCoordinator(htmlParser, crawler.WithLogger(logger))
//	result, err := c.Crawl(ctx, crawler.Request{
//		Seeds:       []string{"https://example.com/"},
//		MaxDepth:    2,
//		Timeout:     10 * time.Second,
//		Parallelism: 8,
//	})
package crawler
