package blockzip

import (
	"io"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type compressJob struct {
	block int
	data  []byte
	out   chan compressResult
}

type compressResult struct {
	block []byte
	err   error
}

// encodeBlocksParallel compresses blocks on o.parallelism workers. Blocks are
// independent, so only the source reads and the destination writes stay in
// block order; the container comes out byte-identical to a sequential encode.
func encodeBlocksParallel(dst io.Writer, src io.Reader, total int64, blockCount int, o *options) ([]int, error) {
	jobs := make(chan *compressJob, o.parallelism)
	ordered := make(chan *compressJob, o.parallelism)

	var workers errgroup.Group
	for w := 0; w < o.parallelism; w++ {
		workers.Go(func() error {
			for job := range jobs {
				block := o.codec.Compress(nil, job.data)

				if len(block) > MaxBlockLength {
					job.out <- compressResult{err: formatErrorf("block %d compresses to %d bytes, index limit is %d", job.block, len(block), MaxBlockLength)}
					continue
				}

				job.out <- compressResult{block: block}
			}

			return nil
		})
	}

	readErr := make(chan error, 1)

	go func() {
		defer close(jobs)
		defer close(ordered)

		for i := 0; i < blockCount; i++ {
			data := make([]byte, chunkLength(i, blockCount, o.blockSize, total))

			if _, err := io.ReadFull(src, data); err != nil {
				readErr <- errors.Wrapf(err, "blockzip: reading source block %d", i)
				return
			}

			job := &compressJob{block: i, data: data, out: make(chan compressResult, 1)}
			jobs <- job
			ordered <- job
		}

		readErr <- nil
	}()

	index := make([]int, 0, blockCount)
	var err error

	for job := range ordered {
		result := <-job.out

		if result.err != nil {
			err = result.err
			break
		}

		if _, werr := dst.Write(result.block); werr != nil {
			err = errors.Wrapf(werr, "blockzip: writing block %d", job.block)
			break
		}

		index = append(index, len(result.block))
	}

	if err != nil {
		// Unblock the producer so it can wind down; results are buffered.
		go func() {
			for range ordered {
			}
		}()
	}

	if rerr := <-readErr; err == nil && rerr != nil {
		err = rerr
	}

	if werr := workers.Wait(); err == nil && werr != nil {
		err = werr
	}

	if err != nil {
		return nil, err
	}

	return index, nil
}
