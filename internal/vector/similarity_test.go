package vector

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCosineSimilarity(t *testing.T) {
	Convey("CosineSimilarity 计算余弦相似度", t, func() {
		Convey("同向向量相似度为 1", func() {
			So(CosineSimilarity([]float64{1, 2, 3}, []float64{2, 4, 6}), ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("正交向量相似度为 0", func() {
			So(CosineSimilarity([]float64{1, 0}, []float64{0, 1}), ShouldAlmostEqual, 0.0, 1e-9)
		})

		Convey("反向向量相似度为 -1", func() {
			So(CosineSimilarity([]float64{1, 1}, []float64{-1, -1}), ShouldAlmostEqual, -1.0, 1e-9)
		})

		Convey("维度不一致返回 0", func() {
			So(CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}), ShouldEqual, 0)
		})

		Convey("零向量返回 0", func() {
			So(CosineSimilarity([]float64{0, 0}, []float64{1, 2}), ShouldEqual, 0)
			So(CosineSimilarity(nil, nil), ShouldEqual, 0)
		})
	})
}

func TestRankTopK(t *testing.T) {
	Convey("rankTopK 按相似度降序取前 k 个", t, func() {
		query := []float64{1, 0}
		candidates := []ScoredChunk{
			{Chunk: Chunk{ID: "orthogonal", Embedding: []float64{0, 1}}},
			{Chunk: Chunk{ID: "aligned", Embedding: []float64{2, 0}}},
			{Chunk: Chunk{ID: "diagonal", Embedding: []float64{1, 1}}},
		}

		Convey("排序正确且分数单调递减", func() {
			ranked := rankTopK(query, candidates, 3)
			So(ranked, ShouldHaveLength, 3)
			So(ranked[0].ID, ShouldEqual, "aligned")
			So(ranked[1].ID, ShouldEqual, "diagonal")
			So(ranked[2].ID, ShouldEqual, "orthogonal")
			So(ranked[0].Score, ShouldBeGreaterThanOrEqualTo, ranked[1].Score)
			So(ranked[1].Score, ShouldBeGreaterThanOrEqualTo, ranked[2].Score)
		})

		Convey("k 小于候选数时截断", func() {
			ranked := rankTopK(query, candidates, 1)
			So(ranked, ShouldHaveLength, 1)
			So(ranked[0].ID, ShouldEqual, "aligned")
		})

		Convey("k 大于候选数时全部返回", func() {
			ranked := rankTopK(query, candidates, 10)
			So(ranked, ShouldHaveLength, 3)
		})

		Convey("空候选集返回空", func() {
			So(rankTopK(query, nil, 3), ShouldBeEmpty)
		})
	})
}
