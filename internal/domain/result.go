package domain

// ListStatus はリスト操作結果の種別を表す。
type ListStatus int

const (
	// ListStatusSuccess は全件の開封に成功したことを表す。
	ListStatusSuccess ListStatus = iota
	// ListStatusPartial は1件以上の開封に失敗したことを表す。
	ListStatusPartial
)

func (s ListStatus) String() string {
	switch s {
	case ListStatusSuccess:
		return "success"
	case ListStatusPartial:
		return "partial"
	}
	return "unknown"
}

// PartialResult は開封に失敗した項目と、その原因を表す。
type PartialResult[P any] struct {
	Partial P
	Cause   error
}

// ListAPIResult はページング付きリスト操作の結果を表す。
// バックエンドのページに含まれる各レコードは Items か Failed のどちらか一方に必ず現れる。
type ListAPIResult[T, P any] struct {
	Status    ListStatus
	Items     []T
	Failed    []PartialResult[P]
	NextToken *string
}

// NewListSuccess は成功結果を生成する。
func NewListSuccess[T, P any](items []T, nextToken *string) ListAPIResult[T, P] {
	return ListAPIResult[T, P]{Status: ListStatusSuccess, Items: items, NextToken: nextToken}
}

// NewListPartial は部分成功結果を生成する。
func NewListPartial[T, P any](items []T, failed []PartialResult[P], nextToken *string) ListAPIResult[T, P] {
	return ListAPIResult[T, P]{Status: ListStatusPartial, Items: items, Failed: failed, NextToken: nextToken}
}

// Len は結果に含まれるレコード数（成功と失敗の合計）を返す。
func (r ListAPIResult[T, P]) Len() int {
	return len(r.Items) + len(r.Failed)
}

// BatchOperationStatus は一括更新系操作の結果ステータスを表す。
type BatchOperationStatus string

const (
	BatchOperationStatusSuccess BatchOperationStatus = "SUCCESS"
	BatchOperationStatusFailure BatchOperationStatus = "FAILED"
	BatchOperationStatusPartial BatchOperationStatus = "PARTIAL"
)

// BatchOperationResult は一括操作の結果を表す。
// Status が Partial の場合のみ SuccessValues と FailureValues が設定され、
// 両者の和は要求したIDと一致し、互いに素である。
type BatchOperationResult[S, F any] struct {
	Status        BatchOperationStatus
	SuccessValues []S
	FailureValues []F
}

// IsPartial は部分成功かどうかを返す。
func (r BatchOperationResult[S, F]) IsPartial() bool {
	return r.Status == BatchOperationStatusPartial
}
