package resume

// Strategy is the processing branch chosen from the article count.
type Strategy int

// Strategies, by increasing volume.
const (
	StrategyDirectPass Strategy = iota
	StrategySingleBatch
	StrategyMultiBatch
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirectPass:
		return "direct_pass"
	case StrategySingleBatch:
		return "single_batch"
	case StrategyMultiBatch:
		return "multi_batch"
	default:
		return "unknown"
	}
}

// Plan is the outcome of batch planning for one request.
type Plan struct {
	Strategy     Strategy
	ArticleCount int
	// BatchSize is the maximum number of articles per batch.
	BatchSize int
	// Batches is the number of selection calls issued before escalation.
	Batches int
	// PerBatch is the maxRequired of each batch selection call.
	PerBatch int
}

// PlanFor picks the strategy for articleCount filtered articles.
func PlanFor(articleCount int) Plan {
	switch {
	case articleCount <= directPassMax:
		return Plan{Strategy: StrategyDirectPass, ArticleCount: articleCount}
	case articleCount < multiBatchMin:
		return Plan{
			Strategy:     StrategySingleBatch,
			ArticleCount: articleCount,
			BatchSize:    articleCount,
			Batches:      1,
			PerBatch:     min(articleCount, singleBatchMaxSelected),
		}
	}

	batchSize := clamp(ceilDiv(articleCount, batchDivisor), minBatchSize, maxBatchSize)
	batches := ceilDiv(articleCount, batchSize)

	return Plan{
		Strategy:     StrategyMultiBatch,
		ArticleCount: articleCount,
		BatchSize:    batchSize,
		Batches:      batches,
		PerBatch:     max(minNewsPerBatch, ceilDiv(targetCandidatePool, batches)),
	}
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, ceilDiv(len(items), size))

	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}

	return chunks
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
