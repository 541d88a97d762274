package sockets

import (
	"testing"
	"time"
)

/**
  *  @author tryao
  *  @date 2022/09/07 09:45
**/

func TestTo_Int64(t *testing.T) {
	type args struct {
		v any
	}
	tests := []struct {
		name    string
		args    args
		want    int64
		wantErr bool
	}{
		{"int", args{3}, 3, false},
		{"json number", args{float64(42)}, 42, false},
		{"string", args{"123"}, 123, false},
		{"float string", args{"0.55"}, 0, false},
		{"bool", args{true}, 1, false},
		{"bad string", args{"abc"}, 0, true},
		{"nil", args{nil}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := To[int64](tt.args.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("To[int64]() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("To[int64]() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTo_Float64(t *testing.T) {
	type args struct {
		v any
	}
	tests := []struct {
		name    string
		args    args
		want    float64
		wantErr bool
	}{
		{"float", args{1.25}, 1.25, false},
		{"int", args{2}, 2, false},
		{"string", args{"0.125"}, 0.125, false},
		{"bad string", args{"x"}, 0, true},
		{"bool", args{false}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := To[float64](tt.args.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("To[float64]() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("To[float64]() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTo_Uint8(t *testing.T) {
	type args struct {
		v any
	}
	tests := []struct {
		name    string
		args    args
		want    uint8
		wantErr bool
	}{
		{"json number", args{float64(200)}, 200, false},
		{"string", args{"7"}, 7, false},
		{"bad string", args{"x"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := To[uint8](tt.args.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("To[uint8]() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("To[uint8]() got = %v, want %v", got, tt.want)
			}
		})
	}
	//byte是uint8的别名，走同一个分支
	b, err := To[byte]("8")
	if err != nil || b != 8 {
		t.Errorf("To[byte]() got = %v, err = %v", b, err)
	}
	u16, err := To[uint16]("65535")
	if err != nil || u16 != 65535 {
		t.Errorf("To[uint16]() got = %v, err = %v", u16, err)
	}
}

func TestTo_Bool(t *testing.T) {
	type args struct {
		v any
	}
	tests := []struct {
		name    string
		args    args
		want    bool
		wantErr bool
	}{
		{"bool", args{true}, true, false},
		{"1", args{float64(1)}, true, false},
		{"0", args{0}, false, false},
		{"true string", args{"true"}, true, false},
		{"bad string", args{"yes"}, false, true},
		{"nil", args{nil}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := To[bool](tt.args.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("To[bool]() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("To[bool]() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTo_String(t *testing.T) {
	type args struct {
		v any
	}
	tests := []struct {
		name    string
		args    args
		want    string
		wantErr bool
	}{
		{"string", args{"hello"}, "hello", false},
		{"number", args{float64(12)}, "12", false},
		{"bool", args{true}, "true", false},
		{"nil", args{nil}, "", false},
		{"slice", args{[]int{1}}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := To[string](tt.args.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("To[string]() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("To[string]() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTo_Duration(t *testing.T) {
	type args struct {
		v any
	}
	tests := []struct {
		name    string
		args    args
		want    time.Duration
		wantErr bool
	}{
		{"string", args{"1500ms"}, 1500 * time.Millisecond, false},
		{"nanos", args{float64(time.Second)}, time.Second, false},
		{"bad string", args{"soon"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := To[time.Duration](tt.args.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("To[time.Duration]() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("To[time.Duration]() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTo_Any(t *testing.T) {
	v, err := To[any]("raw")
	if err != nil || v != "raw" {
		t.Errorf("To[any]() got = %v, err = %v", v, err)
	}
}

// json解码出来的map转结构体
func TestTo_Struct(t *testing.T) {
	type user struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	got, err := To[user](map[string]any{"name": "tom", "age": float64(3)})
	if err != nil {
		t.Fatalf("To[user]() error = %v", err)
	}
	if got.Name != "tom" || got.Age != 3 {
		t.Errorf("To[user]() got = %+v", got)
	}
	if _, err = To[user]("not a user"); err == nil {
		t.Error("To[user]() from string should fail")
	}
}

func TestTo_Slice(t *testing.T) {
	got, err := To[[]int64]([]any{float64(1), float64(2), float64(3)})
	if err != nil {
		t.Fatalf("To[[]int64]() error = %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("To[[]int64]() got = %v", got)
	}
}
