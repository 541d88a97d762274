package sockets

/**
  *  @author tryao
  *  @date 2022/09/06 15:02
**/

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// To 把json解码出来的弱类型值转换成方法参数声明的类型
// 基础类型走快速路径，结构体/切片/映射通过json中转
func To[T any](v any) (T, error) {
	var r T
	switch p := any(&r).(type) {
	case *any:
		*p = v
		return r, nil
	case *string:
		s, err := toString(v)
		*p = s
		return r, err
	case *[]byte:
		s, err := toString(v)
		*p = []byte(s)
		return r, err
	case *bool:
		b, err := toBool(v)
		*p = b
		return r, err
	case *int:
		i, err := toInt64(v)
		*p = int(i)
		return r, err
	case *int8:
		i, err := toInt64(v)
		*p = int8(i)
		return r, err
	case *int16:
		i, err := toInt64(v)
		*p = int16(i)
		return r, err
	case *int32:
		i, err := toInt64(v)
		*p = int32(i)
		return r, err
	case *int64:
		i, err := toInt64(v)
		*p = i
		return r, err
	case *uint:
		i, err := toInt64(v)
		*p = uint(i)
		return r, err
	case *uint8:
		i, err := toInt64(v)
		*p = uint8(i)
		return r, err
	case *uint16:
		i, err := toInt64(v)
		*p = uint16(i)
		return r, err
	case *uint32:
		i, err := toInt64(v)
		*p = uint32(i)
		return r, err
	case *uint64:
		i, err := toInt64(v)
		*p = uint64(i)
		return r, err
	case *float32:
		f, err := toFloat64(v)
		*p = float32(f)
		return r, err
	case *float64:
		f, err := toFloat64(v)
		*p = f
		return r, err
	case *time.Duration:
		d, err := toDuration(v)
		*p = d
		return r, err
	}
	// 结构化类型，json中转
	if v == nil {
		return r, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return r, err
	}
	if err = json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("can't convert %T to %T: %w", v, r, err)
	}
	return r, nil
}

func toInt64(temp any) (int64, error) {
	switch temp.(type) {
	case int, int8, int16, int32, int64:
		return reflect.ValueOf(temp).Int(), nil
	case uint, uint8, uint16, uint32, uint64:
		//注意这里是可能溢出的，谨慎处理
		return int64(reflect.ValueOf(temp).Uint()), nil
	case float64, float32:
		return int64(reflect.ValueOf(temp).Float()), nil
	case bool:
		if temp.(bool) {
			return 1, nil
		}
		return 0, nil
	case string:
		f, e := strconv.ParseFloat(temp.(string), 64)
		if e != nil {
			return 0, fmt.Errorf("can't convert %q to integer", temp)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("can't convert %T to integer", temp)
	}
}

func toFloat64(temp any) (float64, error) {
	switch temp.(type) {
	case int, int8, int16, int32, int64:
		return float64(reflect.ValueOf(temp).Int()), nil
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(temp).Uint()), nil
	case float64, float32:
		return reflect.ValueOf(temp).Float(), nil
	case string:
		f, e := strconv.ParseFloat(temp.(string), 64)
		if e != nil {
			return 0, fmt.Errorf("can't convert %q to float", temp)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("can't convert %T to float", temp)
	}
}

func toBool(temp any) (bool, error) {
	switch t := temp.(type) {
	case bool:
		return t, nil
	case string:
		b, e := strconv.ParseBool(t)
		if e != nil {
			return false, fmt.Errorf("can't convert %q to bool", t)
		}
		return b, nil
	case nil:
		return false, nil
	case int, int8, int16, int32, int64:
		return reflect.ValueOf(temp).Int() != 0, nil
	case uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(temp).Uint() != 0, nil
	case float64, float32:
		return reflect.ValueOf(temp).Float() != 0, nil
	default:
		return false, fmt.Errorf("can't convert %T to bool", temp)
	}
}

func toString(temp any) (string, error) {
	switch t := temp.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(temp).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(temp).Uint(), 10), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("can't convert %T to string", temp)
	}
}

func toDuration(temp any) (time.Duration, error) {
	switch t := temp.(type) {
	case string:
		d, e := time.ParseDuration(t)
		if e != nil {
			return 0, fmt.Errorf("can't convert %q to duration", t)
		}
		return d, nil
	default:
		i, err := toInt64(temp)
		if err != nil {
			return 0, fmt.Errorf("can't convert %T to duration", temp)
		}
		return time.Duration(i), nil
	}
}
