package reflection

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID       int
	Name     string
	email    string
	_        [4]byte
	XXX_wire []byte
}

func (u *user) GetDisplayName() string  { return u.Name }
func (u *user) SetDisplayName(s string) { u.Name = s }

type account struct {
	active bool
}

func (a *account) GetActive() bool  { return a.active }
func (a *account) IsActive() bool   { return a.active }
func (a *account) SetActive(b bool) { a.active = b }

type base struct {
	ID      int
	Created string
}

type derived struct {
	base
	ID   string // shadows base.ID
	Name string
}

func TestNewClassMetadata_RejectsNonStruct(t *testing.T) {
	_, err := NewClassMetadata(reflect.TypeOf(42))
	require.Error(t, err)
	assert.True(t, IsReflectionError(err))

	_, err = NewClassMetadata(nil)
	assert.True(t, IsReflectionError(err))
}

func TestNewClassMetadata_PointerResolvesToElem(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(&user{}))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(user{}), meta.Type())
}

func TestClassMetadata_FieldAccessors(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(user{}))
	require.NoError(t, err)

	assert.True(t, meta.HasGetter("ID"))
	assert.True(t, meta.HasSetter("ID"))
	assert.False(t, meta.HasGetter("email"), "unexported fields are invisible")
	assert.False(t, meta.HasGetter("_"))
	assert.False(t, meta.HasGetter("XXX_wire"), "generated internals are filtered")

	u := &user{ID: 7}
	getter, err := meta.GetInvoker("ID")
	require.NoError(t, err)
	value, err := getter.Invoke(u)
	require.NoError(t, err)
	assert.Equal(t, 7, value)

	setter, err := meta.SetInvoker("ID")
	require.NoError(t, err)
	_, err = setter.Invoke(u, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, u.ID)
}

func TestClassMetadata_MethodAccessors(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(user{}))
	require.NoError(t, err)

	require.True(t, meta.HasGetter("DisplayName"))
	require.True(t, meta.HasSetter("DisplayName"))

	u := &user{Name: "ada"}
	getter, err := meta.GetInvoker("DisplayName")
	require.NoError(t, err)
	value, err := getter.Invoke(u)
	require.NoError(t, err)
	assert.Equal(t, "ada", value)

	setter, err := meta.SetInvoker("DisplayName")
	require.NoError(t, err)
	_, err = setter.Invoke(u, "grace")
	require.NoError(t, err)
	assert.Equal(t, "grace", u.Name)

	gt, err := meta.GetterType("DisplayName")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(""), gt)
}

func TestClassMetadata_MethodGetterOnValueReceiverTarget(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(user{}))
	require.NoError(t, err)

	// Method getters work on non-pointer targets through an implicit address.
	getter, err := meta.GetInvoker("DisplayName")
	require.NoError(t, err)
	value, err := getter.Invoke(user{Name: "ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada", value)
}

func TestClassMetadata_IsPreferredForBool(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(account{}))
	require.NoError(t, err)

	getter, err := meta.GetInvoker("Active")
	require.NoError(t, err)
	value, err := getter.Invoke(&account{active: true})
	require.NoError(t, err)
	assert.Equal(t, true, value)
}

type conflicted struct{}

func (c *conflicted) GetValue() int   { return 0 }
func (c *conflicted) IsValue() string { return "" }

func TestClassMetadata_AmbiguousGetterFails(t *testing.T) {
	_, err := NewClassMetadata(reflect.TypeOf(conflicted{}))
	require.Error(t, err)
	assert.True(t, IsReflectionError(err))
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestClassMetadata_EmbeddedFields(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(derived{}))
	require.NoError(t, err)

	// Promoted fields are reachable.
	require.True(t, meta.HasGetter("Created"))

	d := &derived{}
	setter, err := meta.SetInvoker("Created")
	require.NoError(t, err)
	_, err = setter.Invoke(d, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", d.base.Created)

	// The outer declaration shadows the promoted one.
	idType, err := meta.GetterType("ID")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(""), idType)
}

type inner struct {
	Label string
}

type outer struct {
	*inner
	ID int
}

func TestClassMetadata_NilEmbeddedPointer(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(outer{}))
	require.NoError(t, err)

	t.Run("getter returns error", func(t *testing.T) {
		getter, err := meta.GetInvoker("Label")
		require.NoError(t, err)
		_, err = getter.Invoke(&outer{ID: 1})
		require.Error(t, err)
	})

	t.Run("setter allocates intermediary", func(t *testing.T) {
		o := &outer{ID: 1}
		setter, err := meta.SetInvoker("Label")
		require.NoError(t, err)
		_, err = setter.Invoke(o, "tagged")
		require.NoError(t, err)
		require.NotNil(t, o.inner)
		assert.Equal(t, "tagged", o.inner.Label)
	})

	t.Run("populated embed round-trips", func(t *testing.T) {
		o := &outer{inner: &inner{Label: "a"}}
		getter, err := meta.GetInvoker("Label")
		require.NoError(t, err)
		value, err := getter.Invoke(o)
		require.NoError(t, err)
		assert.Equal(t, "a", value)
	})
}

func TestClassMetadata_FindPropertyCaseInsensitive(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(user{}))
	require.NoError(t, err)

	tests := []struct {
		input     string
		canonical string
	}{
		{"id", "ID"},
		{"NAME", "Name"},
		{"displayname", "DisplayName"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			canonical, ok := meta.FindProperty(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.canonical, canonical)
		})
	}

	_, ok := meta.FindProperty("nonexistent")
	assert.False(t, ok)
}

func TestClassMetadata_MissingAccessors(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(user{}))
	require.NoError(t, err)

	_, err = meta.GetInvoker("Nope")
	assert.True(t, IsReflectionError(err))
	_, err = meta.SetterType("Nope")
	assert.True(t, IsReflectionError(err))
}

func TestClassMetadata_NewInstance(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(user{}))
	require.NoError(t, err)

	instance := meta.NewInstance()
	u, ok := instance.(*user)
	require.True(t, ok)
	assert.Equal(t, 0, u.ID)
}

func TestClassMetadata_Names(t *testing.T) {
	meta, err := NewClassMetadata(reflect.TypeOf(user{}))
	require.NoError(t, err)

	assert.Contains(t, meta.GettableNames(), "ID")
	assert.Contains(t, meta.GettableNames(), "DisplayName")
	assert.Contains(t, meta.SettableNames(), "Name")
	assert.NotContains(t, meta.GettableNames(), "email")
}
