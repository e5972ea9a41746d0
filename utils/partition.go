package utils

import "fmt"

// PartitionMap splits a range of MaxIndex items (elements) into
// ParallelDegree nearly equal contiguous buckets, one per worker.
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of each bucket
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree <= 0 || maxIndex < ParallelDegree {
		err := fmt.Errorf("unable to partition %d items into %d buckets", maxIndex, ParallelDegree)
		panic(err)
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.split1D(n)
	}
	return
}

func (pm *PartitionMap) split1D(threadNum int) (bucket [2]int) {
	var (
		Npart            = pm.MaxIndex / pm.ParallelDegree
		remainder        = pm.MaxIndex % pm.ParallelDegree
		startAdd, endAdd int
	)
	if threadNum < remainder {
		startAdd = threadNum
		endAdd = 1
	} else {
		startAdd = remainder
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

func (pm *PartitionMap) GetBucketRange(bn int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bn][0], pm.Partitions[bn][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (Kmax int) {
	Kmax = pm.Partitions[bn][1] - pm.Partitions[bn][0]
	return
}

// GetLocalK maps a global element number to (local number, bucket size,
// bucket number).
func (pm *PartitionMap) GetLocalK(k int) (kLocal, Kmax, bn int) {
	bn = pm.GetBucket(k)
	kLocal = k - pm.Partitions[bn][0]
	Kmax = pm.GetBucketDimension(bn)
	return
}

func (pm *PartitionMap) GetBucket(k int) (bn int) {
	// Initial guess, then correct for the remainder distribution
	bn = int(float64(pm.ParallelDegree*k) / float64(pm.MaxIndex))
	for !(pm.Partitions[bn][0] <= k && k < pm.Partitions[bn][1]) {
		if pm.Partitions[bn][0] > k {
			bn--
		} else {
			bn++
		}
		if bn < 0 || bn == pm.ParallelDegree {
			err := fmt.Errorf("element index %d out of partition range", k)
			panic(err)
		}
	}
	return
}
